package workorder

import "marineworks/internal/domain"

type CreateWorkOrderRequest struct {
	ClientID       string                   `json:"clientId" validate:"required"`
	VesselID       string                   `json:"vesselId"`
	EquipmentID    string                   `json:"equipmentId"`
	AssigneeUID    string                   `json:"assigneeUid"`
	ReportedDefect string                   `json:"reportedDefect" validate:"required"`
	ServiceReport  string                   `json:"serviceReport"`
	Priority       domain.WorkOrderPriority `json:"priority"`
	Status         domain.WorkOrderStatus   `json:"status"`
}

type TransitionRequest struct {
	To   domain.WorkOrderStatus `json:"to" validate:"required"`
	Note string                 `json:"note"`
}
