package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/HappyLadySauce/errors"
	"gorm.io/gorm"

	"github.com/heavensgate/vpncore/internal/pkg/code"
	"github.com/heavensgate/vpncore/internal/pkg/model"
)

type users struct {
	db *gorm.DB
}

// GetOrCreate implements get_or_create_user(id, name) of §4.1: insert on
// first sight, rename in place if the caller's name differs from what is
// stored.
func (u *users) GetOrCreate(ctx context.Context, id, name string) (*model.User, bool, error) {
	var existing model.User
	err := u.db.WithContext(ctx).Where("id = ?", id).First(&existing).Error
	switch {
	case err == nil:
		if existing.Name != name && name != "" {
			existing.Name = name
			if err := u.db.WithContext(ctx).Save(&existing).Error; err != nil {
				return nil, false, errors.WithCode(code.ErrDatabase, err.Error())
			}
		}
		return &existing, false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		newUser := &model.User{
			ID:           id,
			Name:         name,
			Status:       model.UserStatusCreated,
			RegisteredAt: time.Now(),
		}
		if err := u.db.WithContext(ctx).Create(newUser).Error; err != nil {
			if isUniqueConstraintError(err) {
				// Lost a create race; fetch what the winner inserted.
				if getErr := u.db.WithContext(ctx).Where("id = ?", id).First(&existing).Error; getErr == nil {
					return &existing, false, nil
				}
			}
			return nil, false, errors.WithCode(code.ErrDatabase, err.Error())
		}
		return newUser, true, nil
	default:
		return nil, false, errors.WithCode(code.ErrDatabase, err.Error())
	}
}

func (u *users) Get(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := u.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithCode(code.ErrUserNotFound, "user %q not found", id)
		}
		return nil, errors.WithCode(code.ErrDatabase, err.Error())
	}
	return &user, nil
}

func (u *users) List(ctx context.Context) ([]*model.User, error) {
	var list []*model.User
	if err := u.db.WithContext(ctx).Order("registered_at ASC").Find(&list).Error; err != nil {
		return nil, errors.WithCode(code.ErrDatabase, err.Error())
	}
	return list, nil
}

func (u *users) SetStatus(ctx context.Context, id, status string) error {
	res := u.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return errors.WithCode(code.ErrDatabase, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return errors.WithCode(code.ErrUserNotFound, "user %q not found", id)
	}
	return nil
}

func (u *users) SetExpiry(ctx context.Context, id string, expiresAt *time.Time) error {
	res := u.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("expires_at", expiresAt)
	if res.Error != nil {
		return errors.WithCode(code.ErrDatabase, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return errors.WithCode(code.ErrUserNotFound, "user %q not found", id)
	}
	return nil
}

// isUniqueConstraintError reports whether err is a unique-constraint
// violation, recognising the message shapes SQLite (via the pure-Go driver)
// and common alternate backends use.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"unique constraint failed",
		"duplicate entry",
		"constraint failed",
		"sqlite_constraint_unique",
		"sqlite_constraint",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
