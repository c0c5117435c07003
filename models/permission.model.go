package models

import "time"

const (
	PermissionReconcilePayments = "payments.reconcile"
	PermissionManagePermissions = "permissions.manage"
	PermissionImportCatalog     = "catalog.import"
)

// IsKnownPermission reports whether name is a permission the platform checks
func IsKnownPermission(name string) bool {
	switch name {
	case PermissionReconcilePayments, PermissionManagePermissions, PermissionImportCatalog:
		return true
	}
	return false
}

// Permission grants a named capability to a user
type Permission struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"userId" gorm:"size:64;not null;index"`
	Permission string    `json:"permission" gorm:"type:varchar(255)"` // e.g., "payments.reconcile"
	IsDeleted  bool      `json:"-" gorm:"default:false"`
	CreatedAt  time.Time `json:"createdAt"`
}
