package models

import "time"

// Notification is a message for one recipient, rendered client-side from a
// template key and its parameters.
type Notification struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	DestinataireID uint      `gorm:"index:idx_notification_unread;not null" json:"destinataire_id"`
	Cle            string    `gorm:"size:100;not null" json:"cle"`
	Params         JSONMap   `gorm:"type:text" json:"params,omitempty"`
	Lu             bool      `gorm:"index:idx_notification_unread;not null;default:false" json:"lu"`
}

func (n *Notification) HasParticipant(userID uint) bool {
	return userID != 0 && n.DestinataireID == userID
}
