package memory

import (
	"context"

	"github.com/jnitin/flask-catalog/internal/models"
	"github.com/jnitin/flask-catalog/internal/repository"
)

type RoleStore struct {
	s *Store
}

func (r *RoleStore) Upsert(_ context.Context, role models.Role) (models.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, existing := range r.s.roles {
		if existing.Name == role.Name {
			role.ID = id
			r.s.roles[id] = role
			return role, nil
		}
	}
	r.s.nextRoleID++
	role.ID = r.s.nextRoleID
	r.s.roles[role.ID] = role
	return role, nil
}

func (r *RoleStore) GetByName(_ context.Context, name string) (models.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, role := range r.s.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return models.Role{}, repository.ErrRoleNotFound
}

func (r *RoleStore) GetDefault(_ context.Context) (models.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var found models.Role
	for _, role := range r.s.roles {
		if role.Default && (found.ID == 0 || role.ID < found.ID) {
			found = role
		}
	}
	if found.ID == 0 {
		return models.Role{}, repository.ErrRoleNotFound
	}
	return found, nil
}
