package domain

import "github.com/google/uuid"

// Role distingue los dos tipos de actores del sistema.
type Role string

const (
	RoleCustomer  Role = "customer"
	RoleOrganizer Role = "organizer"
)

// Identity representa al solicitante ya autenticado por el colaborador de
// identidad externo. El núcleo confía en estos datos y solo aplica los
// chequeos de propiedad y rol de cada operación.
type Identity struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  Role
}

func (i Identity) IsOrganizer() bool {
	return i.Role == RoleOrganizer
}

func (i Identity) IsCustomer() bool {
	return i.Role == RoleCustomer
}
