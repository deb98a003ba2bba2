package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/aggregate"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

var (
	errGroupNameRequired = errors.New("group name is required")
	errGroupIDRequired   = errors.New("group_id is required")
	errUserRequired      = errors.New("user name is required when not authenticated")
	errMembersRequired   = errors.New("group must have at least one member")
)

// LedgerService implements the Connect LedgerService on top of the ledger
// store. Balances are derived on every query through balances.
type LedgerService struct {
	store      *ledger.Store
	balances   aggregate.BalanceFunc
	aggregator *aggregate.Aggregator
}

var _ apiconnect.LedgerServiceHandler = (*LedgerService)(nil)

// NewLedgerService creates a LedgerService. A nil balances computes member
// balances directly with the calculator.
func NewLedgerService(store *ledger.Store, balances aggregate.BalanceFunc) *LedgerService {
	if balances == nil {
		balances = calculator.MemberBalances
	}
	return &LedgerService{
		store:      store,
		balances:   balances,
		aggregator: aggregate.New(balances),
	}
}

// CreateGroup creates a new group with a fixed member list. An authenticated
// caller who is not already listed becomes the first member.
func (s *LedgerService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	if strings.TrimSpace(req.Msg.Name) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errGroupNameRequired)
	}

	members := make([]models.Member, 0, len(req.Msg.Members))
	for _, m := range req.Msg.Members {
		if m == nil || strings.TrimSpace(m.Name) == "" {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("member name is required"))
		}
		id := m.Id
		if id == "" {
			id = uuid.New().String()
		}
		members = append(members, models.Member{ID: id, Name: m.Name})
	}
	members = withCaller(ctx, members)
	if len(members) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errMembersRequired)
	}

	group, err := s.store.AddGroup(ctx, models.Group{
		ID:      req.Msg.Id,
		Name:    req.Msg.Name,
		Members: members,
	})
	if errors.Is(err, ledger.ErrGroupExists) {
		slog.Warn("CreateGroup rejected", "group_id", req.Msg.Id, "error", err)
		return nil, connect.NewError(connect.CodeAlreadyExists, err)
	}
	if err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Group created", "group_id", group.ID)

	return connect.NewResponse(&api.CreateGroupResponse{
		Group: toAPIGroup(group),
	}), nil
}

// withCaller prepends the authenticated caller to members unless a member
// already carries the caller's id or name.
func withCaller(ctx context.Context, members []models.Member) []models.Member {
	name := middleware.GetUserName(ctx)
	if name == "" {
		return members
	}
	id := middleware.GetUserID(ctx)
	for _, m := range members {
		if m.Name == name || (id != "" && m.ID == id) {
			return members
		}
	}
	if id == "" {
		id = uuid.New().String()
	}
	return append([]models.Member{{ID: id, Name: name}}, members...)
}

// RecordExpense validates an expense against its group and appends it.
func (s *LedgerService) RecordExpense(ctx context.Context, req *connect.Request[api.RecordExpenseRequest]) (*connect.Response[api.RecordExpenseResponse], error) {
	payer := req.Msg.Payer
	if payer == "" {
		payer = middleware.GetUserName(ctx)
	}

	slog.Info("RecordExpense request received",
		"group_id", req.Msg.GroupId,
		"amount", req.Msg.Amount,
		"split_type", req.Msg.SplitType,
		"payer", payer,
	)

	if req.Msg.GroupId == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errGroupIDRequired)
	}
	group, ok := s.store.Group(req.Msg.GroupId)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("group not found: %s", req.Msg.GroupId))
	}

	splitType := models.SplitType(req.Msg.SplitType)
	if splitType == "" {
		splitType = models.SplitEqual
	}

	splits, err := calculator.BuildSplits(group, payer, req.Msg.Amount, splitType, req.Msg.Splits)
	if err != nil {
		slog.Warn("RecordExpense rejected", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	expense := models.Expense{
		Description: req.Msg.Description,
		Amount:      req.Msg.Amount,
		Payer:       payer,
		SplitType:   splitType,
		Splits:      splits,
	}
	if err := calculator.ValidateExpense(group, expense); err != nil {
		slog.Warn("RecordExpense rejected", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	recorded, found, err := s.store.AddExpense(ctx, group.ID, expense)
	if err != nil {
		slog.Error("RecordExpense failed", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if !found {
		// Deleted between the lookup and the write.
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("group not found: %s", group.ID))
	}

	slog.Info("Expense recorded", "group_id", group.ID, "expense_id", recorded.ID)

	return connect.NewResponse(&api.RecordExpenseResponse{
		Expense: toAPIExpense(recorded),
	}), nil
}

// DeleteGroup removes a group. Deleting an unknown group succeeds.
func (s *LedgerService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupId)

	if req.Msg.GroupId == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errGroupIDRequired)
	}
	if err := s.store.DeleteGroup(ctx, req.Msg.GroupId); err != nil {
		slog.Error("DeleteGroup failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Group deleted", "group_id", req.Msg.GroupId)

	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// MarkExpenseSettled flags an expense as settled. Balances do not change.
func (s *LedgerService) MarkExpenseSettled(ctx context.Context, req *connect.Request[api.MarkExpenseSettledRequest]) (*connect.Response[api.MarkExpenseSettledResponse], error) {
	slog.Info("MarkExpenseSettled request received",
		"group_id", req.Msg.GroupId,
		"expense_id", req.Msg.ExpenseId,
	)

	if req.Msg.GroupId == "" || req.Msg.ExpenseId == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("group_id and expense_id are required"))
	}
	if err := s.store.MarkExpenseAsSettled(ctx, req.Msg.GroupId, req.Msg.ExpenseId); err != nil {
		slog.Error("MarkExpenseSettled failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&api.MarkExpenseSettledResponse{}), nil
}

// ListGroups returns every group, most recently created first.
func (s *LedgerService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	slog.Info("ListGroups request received")

	groups := s.store.Groups()
	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g)
	}

	slog.Info("ListGroups successful", "count", len(groups))

	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// GetGroup returns one group, or no group when the id is unknown.
func (s *LedgerService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupId)

	group, ok := s.store.Group(req.Msg.GroupId)
	if !ok {
		slog.Debug("GetGroup found nothing", "group_id", req.Msg.GroupId)
		return connect.NewResponse(&api.GetGroupResponse{}), nil
	}

	return connect.NewResponse(&api.GetGroupResponse{
		Group: toAPIGroup(group),
	}), nil
}

// GetGroupBalances returns every member's balance in a group. An unknown
// group has no balances.
func (s *LedgerService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	slog.Info("GetGroupBalances request received", "group_id", req.Msg.GroupId)

	group, ok := s.store.Group(req.Msg.GroupId)
	if !ok {
		return connect.NewResponse(&api.GetGroupBalancesResponse{
			Balances: []*api.MemberBalance{},
		}), nil
	}

	return connect.NewResponse(&api.GetGroupBalancesResponse{
		Balances: toAPIBalances(s.balances(group)),
	}), nil
}

// GetUserTotalBalance sums a user's balance across all groups.
func (s *LedgerService) GetUserTotalBalance(ctx context.Context, req *connect.Request[api.GetUserTotalBalanceRequest]) (*connect.Response[api.GetUserTotalBalanceResponse], error) {
	userName, err := resolveUser(ctx, req.Msg.UserName)
	if err != nil {
		return nil, err
	}
	slog.Info("GetUserTotalBalance request received", "user", userName)

	groups := s.store.Groups()
	owed, receivable := aggregate.OwedAndReceivable(s.aggregator.PerGroupBalancesForUser(groups, userName))

	return connect.NewResponse(&api.GetUserTotalBalanceResponse{
		UserName:   userName,
		Balance:    s.aggregator.TotalBalanceForUser(groups, userName),
		Owed:       owed,
		Receivable: receivable,
	}), nil
}

// GetUserGroupBalances returns a user's balance in every group.
func (s *LedgerService) GetUserGroupBalances(ctx context.Context, req *connect.Request[api.GetUserGroupBalancesRequest]) (*connect.Response[api.GetUserGroupBalancesResponse], error) {
	userName, err := resolveUser(ctx, req.Msg.UserName)
	if err != nil {
		return nil, err
	}
	slog.Info("GetUserGroupBalances request received", "user", userName)

	balances := s.aggregator.PerGroupBalancesForUser(s.store.Groups(), userName)

	return connect.NewResponse(&api.GetUserGroupBalancesResponse{
		UserName: userName,
		Groups:   toAPIGroupBalances(balances),
	}), nil
}

// GetCounterpartySummary returns what the user and each other person owe
// each other across shared groups.
func (s *LedgerService) GetCounterpartySummary(ctx context.Context, req *connect.Request[api.GetCounterpartySummaryRequest]) (*connect.Response[api.GetCounterpartySummaryResponse], error) {
	userName, err := resolveUser(ctx, req.Msg.UserName)
	if err != nil {
		return nil, err
	}
	slog.Info("GetCounterpartySummary request received", "user", userName)

	summaries := aggregate.PerCounterpartySummary(s.store.Groups(), userName)

	slog.Info("GetCounterpartySummary successful", "user", userName, "count", len(summaries))

	return connect.NewResponse(&api.GetCounterpartySummaryResponse{
		UserName:       userName,
		Counterparties: toAPICounterparties(summaries),
	}), nil
}

// resolveUser prefers the explicitly requested name and falls back to the
// authenticated caller.
func resolveUser(ctx context.Context, requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	if name := middleware.GetUserName(ctx); name != "" {
		return name, nil
	}
	return "", connect.NewError(connect.CodeInvalidArgument, errUserRequired)
}
