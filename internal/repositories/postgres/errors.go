package postgres

import (
	"errors"

	"github.com/yoockh/talentpool/internal/utils"
	"gorm.io/gorm"
)

// translate maps gorm sentinels onto the repository-level ones services check.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return utils.ErrDuplicate
	default:
		return err
	}
}
