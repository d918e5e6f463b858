package orders

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"partsdesk/internal"
	"partsdesk/internal/logging"
	"partsdesk/internal/metrics"
	"partsdesk/internal/parts"
)

// Creator is the part of Client the push service needs.
type Creator interface {
	CreateOrder(ctx context.Context, req CreateRequest) (string, error)
}

type Store interface {
	ListUnpushedOrders(limit int) ([]internal.OrderRow, error)
	GetEmailByID(id int) (*internal.EmailRow, error)
	MarkOrderPushed(orderID int64, externalID string) error
}

type PushService struct {
	store   Store
	creator Creator
	logger  logging.Logger
	metrics *metrics.Metrics
}

func NewPushService(store Store, creator Creator, logger logging.Logger, m *metrics.Metrics) *PushService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &PushService{store: store, creator: creator, logger: logger, metrics: m}
}

type PushResult struct {
	Emails int
	Orders int
	Failed int
}

// PushPending sends unpushed orders, one request per email. An email the API rejects stays
// unpushed for the next run.
func (s *PushService) PushPending(ctx context.Context, limit int) (PushResult, error) {
	rows, err := s.store.ListUnpushedOrders(limit)
	if err != nil {
		return PushResult{}, err
	}

	var out PushResult
	for _, group := range groupByEmail(rows) {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		req, err := s.buildRequest(group)
		if err != nil {
			return out, err
		}
		id, err := s.creator.CreateOrder(ctx, req)
		if err != nil {
			out.Failed++
			s.metrics.ObserveError("orders_push")
			s.logger.Warn("order push failed", "emailId", req.EmailID, "error", err)
			continue
		}
		for _, row := range group {
			if err := s.store.MarkOrderPushed(row.ID, id); err != nil {
				return out, fmt.Errorf("mark order %d pushed: %w", row.ID, err)
			}
		}
		out.Emails++
		out.Orders += len(group)
		s.logger.Info("orders pushed", "emailId", req.EmailID, "externalId", id, "orders", len(group))
	}
	return out, nil
}

func (s *PushService) buildRequest(group []internal.OrderRow) (CreateRequest, error) {
	first := group[0]
	email, err := s.store.GetEmailByID(first.EmailID)
	if err != nil {
		return CreateRequest{}, err
	}
	req := CreateRequest{EmailID: first.EmailID, IdempotencyKey: idempotencyKey(group)}
	if email != nil {
		req.Sender = email.Sender
		req.Subject = email.Subject
		req.ReceivedAt = email.ReceivedAt
	}

	result := parts.ParsingResult{
		Airline:           first.Airline,
		IsAviationRequest: true,
		Strategy:          first.Strategy,
		Orders:            make([]parts.PartRequestRecord, 0, len(group)),
	}
	for _, row := range group {
		alts := row.AlternatePartNumbers
		if alts == nil {
			alts = []string{}
		}
		result.Orders = append(result.Orders, parts.PartRequestRecord{
			PartNumber:           row.PartNumber,
			Description:          row.Description,
			Quantity:             row.Quantity,
			UnitOfMeasure:        row.UnitOfMeasure,
			AircraftType:         row.AircraftType,
			Priority:             parts.Priority(row.Priority),
			AlternatePartNumbers: alts,
			Remarks:              row.Remarks,
			OrderNumber:          row.OrderNumber,
		})
	}
	req.Result = result
	return req, nil
}

// idempotencyKey is the same for the same email and order lines.
func idempotencyKey(group []internal.OrderRow) string {
	ids := make([]string, 0, len(group))
	for _, row := range group {
		ids = append(ids, strconv.FormatInt(row.ID, 10))
	}
	name := fmt.Sprintf("partsdesk/orders/%d/%s", group[0].EmailID, strings.Join(ids, ","))
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// groupByEmail keeps the incoming order of emails and lines.
func groupByEmail(rows []internal.OrderRow) [][]internal.OrderRow {
	var out [][]internal.OrderRow
	index := map[int]int{}
	for _, row := range rows {
		i, ok := index[row.EmailID]
		if !ok {
			i = len(out)
			index[row.EmailID] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], row)
	}
	return out
}
