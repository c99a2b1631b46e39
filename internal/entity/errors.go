package entity

import "errors"

var ErrKeyNotFound = errors.New("chave não encontrada no storage")

var ErrProspectNotFound = errors.New("prospect não encontrado")
