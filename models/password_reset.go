package models

import "time"

// PasswordReset guarda el hash del token de restablecimiento enviado
// por correo. El token en claro nunca se persiste.
type PasswordReset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"usuario_id"`
	TokenHash string    `gorm:"type:varchar(100);not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expira_en"`
	Used      bool      `gorm:"not null;default:false" json:"usado"`
	CreatedAt time.Time `json:"created_at"`
}
