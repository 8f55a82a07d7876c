package domain

type WorkOrderStatus string

const (
	StatusUnderReview          WorkOrderStatus = "UNDER_REVIEW"
	StatusAwaitingPart         WorkOrderStatus = "AWAITING_PART"
	StatusAwaitingBudgetApprov WorkOrderStatus = "AWAITING_BUDGET_APPROVAL"
	StatusInProgress           WorkOrderStatus = "IN_PROGRESS"
	StatusDone                 WorkOrderStatus = "DONE"
	StatusCanceled             WorkOrderStatus = "CANCELED"
)

// AllStatuses lists the board columns in presentation order.
var AllStatuses = []WorkOrderStatus{
	StatusUnderReview,
	StatusAwaitingPart,
	StatusAwaitingBudgetApprov,
	StatusInProgress,
	StatusDone,
	StatusCanceled,
}

func (s WorkOrderStatus) Valid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

type WorkOrderPriority string

const (
	PriorityLow      WorkOrderPriority = "low"
	PriorityMedium   WorkOrderPriority = "medium"
	PriorityHigh     WorkOrderPriority = "high"
	PriorityCritical WorkOrderPriority = "critical"
)

func (p WorkOrderPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Rank orders priorities for board sorting, highest first.
func (p WorkOrderPriority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// WorkOrder is the service-request aggregate. Status, statusUpdatedAt,
// updatedAt and the photo sub-collection are written only by the work
// order repository and the transition engine; everything else goes
// through the generic update path.
type WorkOrder struct {
	ID             string            `json:"id"`
	Code           string            `json:"code"`
	ClientID       string            `json:"clientId" validate:"required"`
	VesselID       string            `json:"vesselId,omitempty"`
	EquipmentID    string            `json:"equipmentId,omitempty"`
	AssigneeUID    string            `json:"assigneeUid,omitempty"`
	ReportedDefect string            `json:"reportedDefect" validate:"required"`
	ServiceReport  string            `json:"serviceReport,omitempty"`
	Priority       WorkOrderPriority `json:"priority"`
	Status         WorkOrderStatus   `json:"status"`
	Photos         map[string]Photo  `json:"photos,omitempty"`

	CreatedAt       int64  `json:"createdAt"`
	UpdatedAt       int64  `json:"updatedAt"`
	StatusUpdatedAt int64  `json:"statusUpdatedAt"`
	CreatedBy       string `json:"createdBy,omitempty"`
}

// StatusEvent is one entry of a work order's append-only audit stream.
// From is empty only for the implicit initial state.
type StatusEvent struct {
	ID        string          `json:"id"`
	From      WorkOrderStatus `json:"from,omitempty"`
	To        WorkOrderStatus `json:"to"`
	Note      string          `json:"note,omitempty"`
	ChangedAt int64           `json:"changedAt"`
	ChangedBy string          `json:"changedBy,omitempty"`
}

// Photo is a child of a work order: blob in binary storage, metadata
// embedded under the aggregate.
type Photo struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Path      string `json:"path"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
	CreatedBy string `json:"createdBy,omitempty"`
}
