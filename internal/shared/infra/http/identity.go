package http

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/reservalab/internal/shared/domain"
)

// La identidad llega en cabeceras puestas por el gateway de autenticación.
// Aquí solo se leen: este servicio no valida credenciales.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserName  = "X-User-Name"
	HeaderUserEmail = "X-User-Email"
	HeaderUserRole  = "X-User-Role"
)

var ErrNoIdentity = errors.New("missing or invalid identity headers")

// IdentityFromHeaders reconstruye la identidad del solicitante. Si no hay rol
// explícito se asume cliente.
func IdentityFromHeaders(c *gin.Context) (sharedDomain.Identity, error) {
	id, err := uuid.Parse(c.GetHeader(HeaderUserID))
	if err != nil {
		return sharedDomain.Identity{}, ErrNoIdentity
	}

	role := sharedDomain.RoleCustomer
	switch strings.ToLower(c.GetHeader(HeaderUserRole)) {
	case "organizer":
		role = sharedDomain.RoleOrganizer
	case "", "customer":
	default:
		return sharedDomain.Identity{}, ErrNoIdentity
	}

	return sharedDomain.Identity{
		ID:    id,
		Name:  c.GetHeader(HeaderUserName),
		Email: c.GetHeader(HeaderUserEmail),
		Role:  role,
	}, nil
}
