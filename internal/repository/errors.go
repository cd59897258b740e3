package repository

import "errors"

// ErrStatusConflict возвращается когда статус слота не совпал с ожидаемым
// (слот успели изменить между чтением и записью)
var ErrStatusConflict = errors.New("slot status conflict")
