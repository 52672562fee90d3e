package dto

import (
	"github.com/spec-kit/change-compliance/internal/domain"
	"github.com/spec-kit/change-compliance/internal/llm"
	"github.com/spec-kit/change-compliance/internal/service"
)

// TicketListResponse is one page of tickets.
type TicketListResponse struct {
	Tickets  []domain.Ticket `json:"tickets"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

// StatsResponse summarizes the dashboard counters.
type StatsResponse struct {
	TotalTickets    int            `json:"totalTickets"`
	PendingApproval int            `json:"pendingApproval"`
	Compliant       int            `json:"compliant"`
	Warning         int            `json:"warning"`
	NonCompliant    int            `json:"nonCompliant"`
	ByPriority      map[string]int `json:"byPriority"`
	ByAssignee      map[string]int `json:"byAssignee"`
}

// ChatMessage is one conversation turn sent by the dashboard.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest payload.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatResponse carries the assistant reply.
type ChatResponse struct {
	Response string `json:"response"`
}

// NewTicketListResponse maps a service page.
func NewTicketListResponse(page service.TicketPage) TicketListResponse {
	tickets := page.Tickets
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return TicketListResponse{
		Tickets:  tickets,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}
}

// NewStatsResponse maps dashboard stats.
func NewStatsResponse(stats service.DashboardStats) StatsResponse {
	return StatsResponse{
		TotalTickets:    stats.TotalTickets,
		PendingApproval: stats.PendingApproval,
		Compliant:       stats.Compliant,
		Warning:         stats.Warning,
		NonCompliant:    stats.NonCompliant,
		ByPriority:      stats.ByPriority,
		ByAssignee:      stats.ByAssignee,
	}
}

// ToLLMMessages converts request turns into completer messages.
func (r ChatRequest) ToLLMMessages() []llm.Message {
	out := make([]llm.Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		out = append(out, llm.Message{Role: llm.Role(m.Role), Content: m.Content})
	}
	return out
}
