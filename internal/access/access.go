package access

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnauthorized     = errors.New("недостаточно прав")
	ErrUnknownOperation = errors.New("неизвестная операция")
)

const (
	OpGetResourceStatus           = "get_resource_status"
	OpGetDatasetStatus            = "get_dataset_status"
	OpGetOrInitiateResourceStatus = "get_or_initiate_resource_status"
	OpGetOrInitiateDatasetStatus  = "get_or_initiate_dataset_status"
	OpSaveResourceStatus          = "save_resource_status"
	OpNotifyChange                = "notify_change"
	OpViewDataset                 = "view_dataset"
)

type Principal struct {
	ID    string
	Admin bool
}

var Anonymous = Principal{}

type Predicate func(p Principal) bool

func AllowAll(Principal) bool { return true }

func AdminOnly(p Principal) bool { return p.Admin }

// DefaultRules: чтение открыто всем, все что ставит задачи или пишет статус - только админам.
func DefaultRules() map[string]Predicate {
	return map[string]Predicate{
		OpGetResourceStatus:           AllowAll,
		OpGetDatasetStatus:            AllowAll,
		OpViewDataset:                 AllowAll,
		OpGetOrInitiateResourceStatus: AdminOnly,
		OpGetOrInitiateDatasetStatus:  AdminOnly,
		OpSaveResourceStatus:          AdminOnly,
		OpNotifyChange:                AdminOnly,
	}
}

type Gate struct {
	rules map[string]Predicate
}

func NewGate(rules map[string]Predicate) *Gate {
	return &Gate{rules: rules}
}

func (g *Gate) Check(op string, p Principal) error {
	pred, ok := g.rules[op]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOperation, op)
	}
	if !pred(p) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, op)
	}
	return nil
}

// KeyResolver сопоставляет bearer-ключ с принципалом.
type KeyResolver struct {
	adminKeys []string
}

func NewKeyResolver(adminKeys []string) *KeyResolver {
	keys := make([]string, 0, len(adminKeys))
	for _, k := range adminKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return &KeyResolver{adminKeys: keys}
}

func (r *KeyResolver) Resolve(req *http.Request) Principal {
	auth := req.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return Anonymous
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Anonymous
	}

	for _, k := range r.adminKeys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(token)) == 1 {
			return Principal{ID: "admin", Admin: true}
		}
	}
	return Anonymous
}
