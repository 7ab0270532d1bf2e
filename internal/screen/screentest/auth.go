package screentest

import (
	"context"
	"sync"

	"github.com/abhisek/learninghub/internal/api"
	"github.com/abhisek/learninghub/internal/auth"
)

// Gateway is an auth.Gateway backed by an in-memory account table.
type Gateway struct {
	// Accounts maps email to secret; every account gets the same role.
	Accounts map[string]string
	Role     string

	mu        sync.Mutex
	logins    int
	registers []api.RegisterRequest
	revoked   []string
}

var _ auth.Gateway = (*Gateway)(nil)

func (g *Gateway) Login(_ context.Context, email, password string) (*api.AuthResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.logins++
	if secret, ok := g.Accounts[email]; !ok || secret != password {
		return nil, &api.StatusError{Code: 401, Message: "Credenciales inválidas"}
	}
	role := g.Role
	if role == "" {
		role = auth.RoleStudent
	}
	return &api.AuthResult{
		Token:    "tok-" + email,
		Identity: api.Identity{ID: "u-" + api.ID(email), Email: email, Name: "Demo Alumno", Role: role},
	}, nil
}

func (g *Gateway) Register(_ context.Context, req api.RegisterRequest) (*api.AuthResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.registers = append(g.registers, req)
	if _, ok := g.Accounts[req.Email]; ok {
		return nil, &api.StatusError{Code: 409, Message: "El email ya está registrado"}
	}
	if g.Accounts == nil {
		g.Accounts = map[string]string{}
	}
	g.Accounts[req.Email] = req.Password
	return &api.AuthResult{
		Token:    "tok-" + req.Email,
		Identity: api.Identity{ID: "u-" + api.ID(req.Email), Email: req.Email, Name: req.Name, Role: req.Role},
	}, nil
}

func (g *Gateway) Logout(_ context.Context, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.revoked = append(g.revoked, token)
	return nil
}

// Revoked returns the tokens passed to Logout.
func (g *Gateway) Revoked() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.revoked...)
}

// Logins returns how many login calls reached the gateway.
func (g *Gateway) Logins() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.logins
}

// Registers returns the register requests that reached the gateway.
func (g *Gateway) Registers() []api.RegisterRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]api.RegisterRequest(nil), g.registers...)
}

// DemoGateway has the seeded demo account.
func DemoGateway() *Gateway {
	return &Gateway{Accounts: map[string]string{"demo@test.com": "demo123"}}
}
