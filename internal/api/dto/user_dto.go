package dto

import "github.com/cuongbtq/opsboard/internal/api/model"

type CreateUserRequest struct {
	Email        string  `json:"email" binding:"required,email,max=254"`
	Name         string  `json:"name" binding:"required,max=100"`
	Role         string  `json:"role" binding:"omitempty,oneof=admin manager member"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
	AvatarURL    string  `json:"avatar_url" binding:"omitempty,url,max=2048"`
}

type UpdateUserRequest struct {
	Email        *string `json:"email" binding:"omitempty,email,max=254"`
	Name         *string `json:"name" binding:"omitempty,min=1,max=100"`
	Role         *string `json:"role" binding:"omitempty,oneof=admin manager member"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid|len=0"`
	AvatarURL    *string `json:"avatar_url" binding:"omitempty,url|len=0"`
}

type ListUsersRequest struct {
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	Role         string `form:"role" binding:"omitempty,oneof=admin manager member"`
	Search       string `form:"search" binding:"max=200"`
}

type UpdateSettingsRequest struct {
	Locale             *string `json:"locale" binding:"omitempty,locale"`
	Theme              *string `json:"theme" binding:"omitempty,oneof=light dark system"`
	EmailNotifications *bool   `json:"email_notifications"`
	SidebarCollapsed   *bool   `json:"sidebar_collapsed"`
}

type CreateAccountRequest struct {
	UserID            string `json:"user_id" binding:"omitempty,uuid"`
	Provider          string `json:"provider" binding:"required,max=50"`
	ProviderAccountID string `json:"provider_account_id" binding:"required,max=255"`
}

type ListAccountsRequest struct {
	UserID string `form:"user_id" binding:"omitempty,uuid"`
}

type ListNotificationsRequest struct {
	Unread bool `form:"unread"`
	Limit  int  `form:"limit" binding:"min=0,max=200"`
}

type NotificationsResponse struct {
	Notifications []model.Notification `json:"notifications"`
	UnreadCount   int                  `json:"unread_count"`
}
