package dto

type CreateJobStatusRequest struct {
	Name         string  `json:"name" binding:"required,max=100"`
	Color        string  `json:"color" binding:"required,hexcolor6"`
	Order        *int    `json:"order" binding:"omitempty,min=0"`
	NextStatusID *string `json:"next_status_id" binding:"omitempty,uuid"`
	PrevStatusID *string `json:"prev_status_id" binding:"omitempty,uuid"`
	IsFinal      bool    `json:"is_final"`
}

// UpdateJobStatusRequest is a partial update. An empty pointer id clears it.
type UpdateJobStatusRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=100"`
	Color        *string `json:"color" binding:"omitempty,hexcolor6"`
	Order        *int    `json:"order" binding:"omitempty,min=0"`
	NextStatusID *string `json:"next_status_id" binding:"omitempty,uuid|len=0"`
	PrevStatusID *string `json:"prev_status_id" binding:"omitempty,uuid|len=0"`
	IsFinal      *bool   `json:"is_final"`
}

type ReorderJobStatusesRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,unique,dive,uuid"`
}

type CreateJobTypeRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Color       string `json:"color" binding:"required,hexcolor6"`
	Description string `json:"description" binding:"max=1000"`
}

type UpdateJobTypeRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Color       *string `json:"color" binding:"omitempty,hexcolor6"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

type CreatePaymentChannelRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=1000"`
	IsActive    *bool  `json:"is_active"`
}

type UpdatePaymentChannelRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	IsActive    *bool   `json:"is_active"`
}

type ListPaymentChannelsRequest struct {
	Active bool `form:"active"`
}

type CreateDepartmentRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description string  `json:"description" binding:"max=1000"`
	ManagerID   *string `json:"manager_id" binding:"omitempty,uuid"`
}

type UpdateDepartmentRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	ManagerID   *string `json:"manager_id" binding:"omitempty,uuid|len=0"`
}
