package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/export"
	"fieldpilot/internal/port"
)

// TimesheetInput selects the sessions included in a timesheet export.
type TimesheetInput struct {
	From time.Time `form:"from" binding:"required" time_format:"2006-01-02"`
	To   time.Time `form:"to" binding:"required" time_format:"2006-01-02"`
}

// ExportService streams spreadsheet exports for managers.
type ExportService interface {
	JobsCSV(ctx context.Context, actor Actor, filter port.JobFilter, w io.Writer) error
	TimesheetXLSX(ctx context.Context, actor Actor, input TimesheetInput, w io.Writer) error
}

type exportService struct {
	jobRepo     port.JobRepository
	clientRepo  port.ClientRepository
	userRepo    port.UserRepository
	sessionRepo port.WorkSessionRepository
	now         func() time.Time
}

// NewExportService creates a new ExportService implementation.
func NewExportService(
	jobRepo port.JobRepository,
	clientRepo port.ClientRepository,
	userRepo port.UserRepository,
	sessionRepo port.WorkSessionRepository,
) ExportService {
	return &exportService{
		jobRepo:     jobRepo,
		clientRepo:  clientRepo,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *exportService) JobsCSV(ctx context.Context, actor Actor, filter port.JobFilter, w io.Writer) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	jobs, err := s.jobRepo.List(ctx, actor.TenantID, filter)
	if err != nil {
		return err
	}
	clients, operators, err := s.names(ctx, actor)
	if err != nil {
		return err
	}

	jw := export.NewJobWriter(w)
	if err := jw.WriteHeader(); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	if err := jw.WriteJobs(jobs, clients, operators); err != nil {
		return fmt.Errorf("writing csv rows: %w", err)
	}
	jw.Flush()
	if err := jw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	log.Printf("exportService.JobsCSV: tenant %s exported %d jobs", actor.TenantID, len(jobs))
	return nil
}

// TimesheetXLSX writes every session started in [From, To] inclusive of the
// whole To day.
func (s *exportService) TimesheetXLSX(ctx context.Context, actor Actor, input TimesheetInput, w io.Writer) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	from := input.From.UTC()
	to := input.To.UTC().AddDate(0, 0, 1)
	if !to.After(from) {
		return fmt.Errorf("%w: 'to' must not be before 'from'", domain.ErrInvalidInput)
	}

	sessions, err := s.sessionRepo.List(ctx, actor.TenantID, port.WorkSessionFilter{From: &from, To: &to})
	if err != nil {
		return err
	}
	jobs, err := s.jobRepo.List(ctx, actor.TenantID, port.JobFilter{})
	if err != nil {
		return err
	}
	_, operators, err := s.names(ctx, actor)
	if err != nil {
		return err
	}
	jobTitles := make(export.Names, len(jobs))
	for i := range jobs {
		jobTitles[jobs[i].ID] = jobs[i].Title
	}

	now := s.now()
	rows := make([]export.TimesheetRow, 0, len(sessions))
	for i := range sessions {
		ws := &sessions[i]
		op := operators[ws.OperatorID]
		if op == "" {
			op = ws.OperatorID.String()
		}
		rows = append(rows, export.TimesheetRow{
			Date:     ws.Date,
			Operator: op,
			Job:      jobTitles[ws.JobID],
			Start:    ws.StartTime,
			End:      ws.EndTime,
			Hours:    export.RoundHours(ws.Duration(now)),
			Notes:    ws.Notes,
		})
	}
	if err := export.WriteTimesheet(w, rows); err != nil {
		return err
	}
	log.Printf("exportService.TimesheetXLSX: tenant %s exported %d sessions", actor.TenantID, len(rows))
	return nil
}

func (s *exportService) names(ctx context.Context, actor Actor) (clients, users export.Names, err error) {
	clientList, err := s.clientRepo.List(ctx, actor.TenantID)
	if err != nil {
		return nil, nil, err
	}
	userList, err := s.userRepo.List(ctx, actor.TenantID, port.UserFilter{})
	if err != nil {
		return nil, nil, err
	}
	clients = make(export.Names, len(clientList))
	for i := range clientList {
		clients[clientList[i].ID] = clientList[i].CompanyName
	}
	users = make(export.Names, len(userList))
	for i := range userList {
		users[userList[i].ID] = userList[i].DisplayName
	}
	return clients, users, nil
}
