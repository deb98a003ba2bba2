// Package apiconnect wires the splitledger.v1.LedgerService messages in
// package api to Connect handlers and clients.
package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "splitledger.v1.LedgerService"

// Fully-qualified procedure names of the LedgerService RPCs.
const (
	LedgerServiceCreateGroupProcedure            = "/splitledger.v1.LedgerService/CreateGroup"
	LedgerServiceRecordExpenseProcedure          = "/splitledger.v1.LedgerService/RecordExpense"
	LedgerServiceDeleteGroupProcedure            = "/splitledger.v1.LedgerService/DeleteGroup"
	LedgerServiceMarkExpenseSettledProcedure     = "/splitledger.v1.LedgerService/MarkExpenseSettled"
	LedgerServiceListGroupsProcedure             = "/splitledger.v1.LedgerService/ListGroups"
	LedgerServiceGetGroupProcedure               = "/splitledger.v1.LedgerService/GetGroup"
	LedgerServiceGetGroupBalancesProcedure       = "/splitledger.v1.LedgerService/GetGroupBalances"
	LedgerServiceGetUserTotalBalanceProcedure    = "/splitledger.v1.LedgerService/GetUserTotalBalance"
	LedgerServiceGetUserGroupBalancesProcedure   = "/splitledger.v1.LedgerService/GetUserGroupBalances"
	LedgerServiceGetCounterpartySummaryProcedure = "/splitledger.v1.LedgerService/GetCounterpartySummary"
)

// LedgerServiceHandler is implemented by the server side of LedgerService.
type LedgerServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	RecordExpense(context.Context, *connect.Request[api.RecordExpenseRequest]) (*connect.Response[api.RecordExpenseResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
	MarkExpenseSettled(context.Context, *connect.Request[api.MarkExpenseSettledRequest]) (*connect.Response[api.MarkExpenseSettledResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
	GetUserTotalBalance(context.Context, *connect.Request[api.GetUserTotalBalanceRequest]) (*connect.Response[api.GetUserTotalBalanceResponse], error)
	GetUserGroupBalances(context.Context, *connect.Request[api.GetUserGroupBalancesRequest]) (*connect.Response[api.GetUserGroupBalancesResponse], error)
	GetCounterpartySummary(context.Context, *connect.Request[api.GetCounterpartySummaryRequest]) (*connect.Response[api.GetCounterpartySummaryResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(handlerCodecs(), opts...)

	createGroup := connect.NewUnaryHandler(LedgerServiceCreateGroupProcedure, svc.CreateGroup, opts...)
	recordExpense := connect.NewUnaryHandler(LedgerServiceRecordExpenseProcedure, svc.RecordExpense, opts...)
	deleteGroup := connect.NewUnaryHandler(LedgerServiceDeleteGroupProcedure, svc.DeleteGroup, opts...)
	markExpenseSettled := connect.NewUnaryHandler(LedgerServiceMarkExpenseSettledProcedure, svc.MarkExpenseSettled, opts...)
	listGroups := connect.NewUnaryHandler(LedgerServiceListGroupsProcedure, svc.ListGroups, opts...)
	getGroup := connect.NewUnaryHandler(LedgerServiceGetGroupProcedure, svc.GetGroup, opts...)
	getGroupBalances := connect.NewUnaryHandler(LedgerServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...)
	getUserTotalBalance := connect.NewUnaryHandler(LedgerServiceGetUserTotalBalanceProcedure, svc.GetUserTotalBalance, opts...)
	getUserGroupBalances := connect.NewUnaryHandler(LedgerServiceGetUserGroupBalancesProcedure, svc.GetUserGroupBalances, opts...)
	getCounterpartySummary := connect.NewUnaryHandler(LedgerServiceGetCounterpartySummaryProcedure, svc.GetCounterpartySummary, opts...)

	return "/" + LedgerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case LedgerServiceCreateGroupProcedure:
			createGroup.ServeHTTP(w, r)
		case LedgerServiceRecordExpenseProcedure:
			recordExpense.ServeHTTP(w, r)
		case LedgerServiceDeleteGroupProcedure:
			deleteGroup.ServeHTTP(w, r)
		case LedgerServiceMarkExpenseSettledProcedure:
			markExpenseSettled.ServeHTTP(w, r)
		case LedgerServiceListGroupsProcedure:
			listGroups.ServeHTTP(w, r)
		case LedgerServiceGetGroupProcedure:
			getGroup.ServeHTTP(w, r)
		case LedgerServiceGetGroupBalancesProcedure:
			getGroupBalances.ServeHTTP(w, r)
		case LedgerServiceGetUserTotalBalanceProcedure:
			getUserTotalBalance.ServeHTTP(w, r)
		case LedgerServiceGetUserGroupBalancesProcedure:
			getUserGroupBalances.ServeHTTP(w, r)
		case LedgerServiceGetCounterpartySummaryProcedure:
			getCounterpartySummary.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// LedgerServiceClient is a client for the splitledger.v1.LedgerService service.
type LedgerServiceClient interface {
	LedgerServiceHandler
}

// NewLedgerServiceClient constructs a client for LedgerService. baseURL is
// the server root, e.g. http://localhost:8080.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{clientCodec()}, opts...)

	return &ledgerServiceClient{
		createGroup: connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](
			httpClient, baseURL+LedgerServiceCreateGroupProcedure, opts...),
		recordExpense: connect.NewClient[api.RecordExpenseRequest, api.RecordExpenseResponse](
			httpClient, baseURL+LedgerServiceRecordExpenseProcedure, opts...),
		deleteGroup: connect.NewClient[api.DeleteGroupRequest, api.DeleteGroupResponse](
			httpClient, baseURL+LedgerServiceDeleteGroupProcedure, opts...),
		markExpenseSettled: connect.NewClient[api.MarkExpenseSettledRequest, api.MarkExpenseSettledResponse](
			httpClient, baseURL+LedgerServiceMarkExpenseSettledProcedure, opts...),
		listGroups: connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](
			httpClient, baseURL+LedgerServiceListGroupsProcedure, opts...),
		getGroup: connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](
			httpClient, baseURL+LedgerServiceGetGroupProcedure, opts...),
		getGroupBalances: connect.NewClient[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse](
			httpClient, baseURL+LedgerServiceGetGroupBalancesProcedure, opts...),
		getUserTotalBalance: connect.NewClient[api.GetUserTotalBalanceRequest, api.GetUserTotalBalanceResponse](
			httpClient, baseURL+LedgerServiceGetUserTotalBalanceProcedure, opts...),
		getUserGroupBalances: connect.NewClient[api.GetUserGroupBalancesRequest, api.GetUserGroupBalancesResponse](
			httpClient, baseURL+LedgerServiceGetUserGroupBalancesProcedure, opts...),
		getCounterpartySummary: connect.NewClient[api.GetCounterpartySummaryRequest, api.GetCounterpartySummaryResponse](
			httpClient, baseURL+LedgerServiceGetCounterpartySummaryProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	createGroup            *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	recordExpense          *connect.Client[api.RecordExpenseRequest, api.RecordExpenseResponse]
	deleteGroup            *connect.Client[api.DeleteGroupRequest, api.DeleteGroupResponse]
	markExpenseSettled     *connect.Client[api.MarkExpenseSettledRequest, api.MarkExpenseSettledResponse]
	listGroups             *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	getGroup               *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	getGroupBalances       *connect.Client[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse]
	getUserTotalBalance    *connect.Client[api.GetUserTotalBalanceRequest, api.GetUserTotalBalanceResponse]
	getUserGroupBalances   *connect.Client[api.GetUserGroupBalancesRequest, api.GetUserGroupBalancesResponse]
	getCounterpartySummary *connect.Client[api.GetCounterpartySummaryRequest, api.GetCounterpartySummaryResponse]
}

func (c *ledgerServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) RecordExpense(ctx context.Context, req *connect.Request[api.RecordExpenseRequest]) (*connect.Response[api.RecordExpenseResponse], error) {
	return c.recordExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) MarkExpenseSettled(ctx context.Context, req *connect.Request[api.MarkExpenseSettledRequest]) (*connect.Response[api.MarkExpenseSettledResponse], error) {
	return c.markExpenseSettled.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetUserTotalBalance(ctx context.Context, req *connect.Request[api.GetUserTotalBalanceRequest]) (*connect.Response[api.GetUserTotalBalanceResponse], error) {
	return c.getUserTotalBalance.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetUserGroupBalances(ctx context.Context, req *connect.Request[api.GetUserGroupBalancesRequest]) (*connect.Response[api.GetUserGroupBalancesResponse], error) {
	return c.getUserGroupBalances.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetCounterpartySummary(ctx context.Context, req *connect.Request[api.GetCounterpartySummaryRequest]) (*connect.Response[api.GetCounterpartySummaryResponse], error) {
	return c.getCounterpartySummary.CallUnary(ctx, req)
}

// UnimplementedLedgerServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedLedgerServiceHandler struct{}

func (UnimplementedLedgerServiceHandler) CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return nil, unimplemented(LedgerServiceCreateGroupProcedure)
}

func (UnimplementedLedgerServiceHandler) RecordExpense(context.Context, *connect.Request[api.RecordExpenseRequest]) (*connect.Response[api.RecordExpenseResponse], error) {
	return nil, unimplemented(LedgerServiceRecordExpenseProcedure)
}

func (UnimplementedLedgerServiceHandler) DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	return nil, unimplemented(LedgerServiceDeleteGroupProcedure)
}

func (UnimplementedLedgerServiceHandler) MarkExpenseSettled(context.Context, *connect.Request[api.MarkExpenseSettledRequest]) (*connect.Response[api.MarkExpenseSettledResponse], error) {
	return nil, unimplemented(LedgerServiceMarkExpenseSettledProcedure)
}

func (UnimplementedLedgerServiceHandler) ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return nil, unimplemented(LedgerServiceListGroupsProcedure)
}

func (UnimplementedLedgerServiceHandler) GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return nil, unimplemented(LedgerServiceGetGroupProcedure)
}

func (UnimplementedLedgerServiceHandler) GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return nil, unimplemented(LedgerServiceGetGroupBalancesProcedure)
}

func (UnimplementedLedgerServiceHandler) GetUserTotalBalance(context.Context, *connect.Request[api.GetUserTotalBalanceRequest]) (*connect.Response[api.GetUserTotalBalanceResponse], error) {
	return nil, unimplemented(LedgerServiceGetUserTotalBalanceProcedure)
}

func (UnimplementedLedgerServiceHandler) GetUserGroupBalances(context.Context, *connect.Request[api.GetUserGroupBalancesRequest]) (*connect.Response[api.GetUserGroupBalancesResponse], error) {
	return nil, unimplemented(LedgerServiceGetUserGroupBalancesProcedure)
}

func (UnimplementedLedgerServiceHandler) GetCounterpartySummary(context.Context, *connect.Request[api.GetCounterpartySummaryRequest]) (*connect.Response[api.GetCounterpartySummaryResponse], error) {
	return nil, unimplemented(LedgerServiceGetCounterpartySummaryProcedure)
}

func unimplemented(procedure string) error {
	return connect.NewError(connect.CodeUnimplemented, errors.New(strings.TrimPrefix(procedure, "/")+" is not implemented"))
}
