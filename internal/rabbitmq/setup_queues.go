package rabbitmq

// QueueConfig описывает очередь и ключ маршрутизации в exchange notifications.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди почтовой доставки уведомлений.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notifications.dispatched", RoutingKey: "dispatched"},
	}
}
