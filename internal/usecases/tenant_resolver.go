package usecases

import (
	"fmt"

	"project_atendimento/internal/entities"
)

type accountKey struct {
	channel  entities.Channel
	instance string
}

// TenantResolver maps a provider account to the tenant that owns it.
// It is built once at startup and never mutated, so lookups need no locking.
type TenantResolver struct {
	byAccount map[accountKey]entities.Tenant
	byID      map[string]entities.Tenant
}

func NewTenantResolver(tenants []entities.Tenant) (*TenantResolver, error) {
	r := &TenantResolver{
		byAccount: make(map[accountKey]entities.Tenant),
		byID:      make(map[string]entities.Tenant, len(tenants)),
	}
	for _, t := range tenants {
		if t.ID == "" {
			return nil, fmt.Errorf("tenant %q has no id", t.Name)
		}
		if _, dup := r.byID[t.ID]; dup {
			return nil, fmt.Errorf("tenant %q declared twice", t.ID)
		}
		r.byID[t.ID] = t

		for channel, instances := range t.Accounts() {
			for _, instance := range instances {
				if instance == "" {
					return nil, fmt.Errorf("tenant %q: empty %s instance", t.ID, channel)
				}
				key := accountKey{channel: channel, instance: instance}
				if owner, dup := r.byAccount[key]; dup {
					return nil, fmt.Errorf("%s instance %q claimed by tenants %q and %q", channel, instance, owner.ID, t.ID)
				}
				r.byAccount[key] = t
			}
		}
	}
	return r, nil
}

// Resolve returns the tenant owning instance on channel
func (r *TenantResolver) Resolve(channel entities.Channel, instance string) (entities.Tenant, bool) {
	t, ok := r.byAccount[accountKey{channel: channel, instance: instance}]
	return t, ok
}

func (r *TenantResolver) Tenant(id string) (entities.Tenant, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Tenants returns every configured tenant, in no particular order
func (r *TenantResolver) Tenants() []entities.Tenant {
	list := make([]entities.Tenant, 0, len(r.byID))
	for _, t := range r.byID {
		list = append(list, t)
	}
	return list
}
