package kanban

import (
	"context"
	"sort"
	"strings"

	"marineworks/internal/domain"
)

// Card is one work order as the board shows it, enriched with reference
// entity names for display and search.
type Card struct {
	ID             string                   `json:"id"`
	Code           string                   `json:"code"`
	Status         domain.WorkOrderStatus   `json:"status"`
	Priority       domain.WorkOrderPriority `json:"priority"`
	ClientName     string                   `json:"clientName"`
	VesselName     string                   `json:"vesselName"`
	EquipmentName  string                   `json:"equipmentName"`
	ReportedDefect string                   `json:"reportedDefect"`
	ServiceReport  string                   `json:"serviceReport,omitempty"`
	UpdatedAt      int64                    `json:"updatedAt"`
}

type Column struct {
	Status domain.WorkOrderStatus `json:"status"`
	Cards  []Card                 `json:"cards"`
}

type Board struct {
	Columns []Column `json:"columns"`
}

type Filter struct {
	Query    string
	Priority domain.WorkOrderPriority
}

// Board derives the column layout from the current work order list.
// Membership and ordering are never persisted: every change to the
// underlying streams recomputes them. Cards sort by priority rank, then
// most recently updated.
func (s *Service) Board(ctx context.Context, filter Filter) (*Board, error) {
	workOrders, err := s.engine.List(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := s.clients.List(ctx)
	if err != nil {
		return nil, err
	}
	vessels, err := s.vessels.List(ctx)
	if err != nil {
		return nil, err
	}
	equipment, err := s.equipment.List(ctx)
	if err != nil {
		return nil, err
	}

	clientNames := map[string]string{}
	for _, c := range clients {
		clientNames[c.ID] = c.Name
	}
	vesselNames := map[string]string{}
	for _, v := range vessels {
		vesselNames[v.ID] = v.Name
	}
	equipmentNames := map[string]string{}
	for _, e := range equipment {
		equipmentNames[e.ID] = e.Name
	}

	byStatus := map[domain.WorkOrderStatus][]Card{}
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	for _, wo := range workOrders {
		if filter.Priority != "" && wo.Priority != filter.Priority {
			continue
		}
		card := Card{
			ID:             wo.ID,
			Code:           wo.Code,
			Status:         wo.Status,
			Priority:       wo.Priority,
			ClientName:     nameOrDash(clientNames, wo.ClientID),
			VesselName:     nameOrDash(vesselNames, wo.VesselID),
			EquipmentName:  nameOrDash(equipmentNames, wo.EquipmentID),
			ReportedDefect: wo.ReportedDefect,
			ServiceReport:  wo.ServiceReport,
			UpdatedAt:      wo.UpdatedAt,
		}
		if query != "" && !strings.Contains(searchText(card), query) {
			continue
		}
		byStatus[wo.Status] = append(byStatus[wo.Status], card)
	}

	board := &Board{}
	for _, status := range domain.AllStatuses {
		cards := byStatus[status]
		sort.SliceStable(cards, func(i, j int) bool {
			if cards[i].Priority.Rank() != cards[j].Priority.Rank() {
				return cards[i].Priority.Rank() > cards[j].Priority.Rank()
			}
			return cards[i].UpdatedAt > cards[j].UpdatedAt
		})
		if cards == nil {
			cards = []Card{}
		}
		board.Columns = append(board.Columns, Column{Status: status, Cards: cards})
	}
	return board, nil
}

func nameOrDash(names map[string]string, id string) string {
	if id == "" {
		return "-"
	}
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return "-"
}

func searchText(c Card) string {
	return strings.ToLower(strings.Join([]string{
		c.Code, c.ClientName, c.VesselName, c.EquipmentName, c.ReportedDefect,
	}, " "))
}
