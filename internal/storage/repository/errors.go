package repository

import "errors"

// Ошибки уровня хранилища, на которые опирается бизнес-логика.
var (
	// ErrNotFound — запрошенная строка отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrEmailExists — пользователь с такой почтой уже зарегистрирован.
	ErrEmailExists = errors.New("email already exists")
	// ErrAlreadyResolved — заявка уже в терминальном состоянии.
	ErrAlreadyResolved = errors.New("upgrade request already resolved")
	// ErrRoleExists — такая роль у пользователя уже есть.
	ErrRoleExists = errors.New("role already assigned")
	// ErrLastAdmin — попытка снять собственную последнюю роль администратора.
	ErrLastAdmin = errors.New("cannot remove own last admin role")
)
