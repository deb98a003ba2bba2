package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/cache"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage/memory"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

const testSecret = "test-secret"

// setupTestServer wires a memory-backed ledger, the balance cache and the
// auth interceptor behind an httptest server, and returns a client for it.
func setupTestServer(t *testing.T) apiconnect.LedgerServiceClient {
	t.Helper()

	balanceCache := cache.NewBalanceCache(16, time.Hour, calculator.MemberBalances)
	store := ledger.New(ledger.Options{
		Storage:   memory.New(),
		Publisher: balanceCache,
	})
	if err := store.Hydrate(context.Background()); err != nil {
		t.Fatalf("failed to hydrate store: %v", err)
	}

	svc := NewLedgerService(store, balanceCache.Balances)
	path, handler := apiconnect.NewLedgerServiceHandler(svc,
		connect.WithInterceptors(
			middleware.OptionalAuth(auth.NewJWTManager(testSecret, time.Hour)),
			middleware.LoggingInterceptor(),
		),
	)

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return apiconnect.NewLedgerServiceClient(http.DefaultClient, server.URL)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createTripGroup(t *testing.T, client apiconnect.LedgerServiceClient) *api.Group {
	t.Helper()

	resp, err := client.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name: "Goa Trip",
		Members: []*api.Member{
			{Id: "a", Name: "Alice"},
			{Id: "b", Name: "Bob"},
			{Id: "c", Name: "Charlie"},
		},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

func recordExpense(t *testing.T, client apiconnect.LedgerServiceClient, req *api.RecordExpenseRequest) *api.Expense {
	t.Helper()

	resp, err := client.RecordExpense(context.Background(), connect.NewRequest(req))
	if err != nil {
		t.Fatalf("RecordExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

func balancesByName(t *testing.T, client apiconnect.LedgerServiceClient, groupID string) map[string]*api.MemberBalance {
	t.Helper()

	resp, err := client.GetGroupBalances(context.Background(), connect.NewRequest(&api.GetGroupBalancesRequest{
		GroupId: groupID,
	}))
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}
	out := make(map[string]*api.MemberBalance, len(resp.Msg.Balances))
	for _, b := range resp.Msg.Balances {
		out[b.Name] = b
	}
	return out
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error, got %T: %v", err, err)
	}
	if connectErr.Code() != want {
		t.Errorf("code: expected %v, got %v", want, connectErr.Code())
	}
}

func TestCreateGroup(t *testing.T) {
	client := setupTestServer(t)

	group := createTripGroup(t, client)

	if group.Id == "" {
		t.Error("expected non-empty group ID")
	}
	if group.Name != "Goa Trip" {
		t.Errorf("name: expected 'Goa Trip', got '%s'", group.Name)
	}
	if len(group.Members) != 3 {
		t.Errorf("members: expected 3, got %d", len(group.Members))
	}
	if len(group.Expenses) != 0 {
		t.Errorf("expenses: expected 0, got %d", len(group.Expenses))
	}
}

func TestCreateGroup_AssignsMemberIDs(t *testing.T) {
	client := setupTestServer(t)

	resp, err := client.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name:    "Flatmates",
		Members: []*api.Member{{Name: "Diana"}, {Name: "Eve"}},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	for _, m := range resp.Msg.Group.Members {
		if m.Id == "" {
			t.Errorf("member %s: expected generated id", m.Name)
		}
	}
}

func TestCreateGroup_Validation(t *testing.T) {
	client := setupTestServer(t)

	tests := []struct {
		name string
		req  *api.CreateGroupRequest
	}{
		{"empty name", &api.CreateGroupRequest{Name: "  "}},
		{"nameless member", &api.CreateGroupRequest{Name: "Trip", Members: []*api.Member{{Id: "x"}}}},
		{"no members", &api.CreateGroupRequest{Name: "Trip"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CreateGroup(context.Background(), connect.NewRequest(tt.req))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}
}

func TestCreateGroup_DuplicateID(t *testing.T) {
	client := setupTestServer(t)

	req := &api.CreateGroupRequest{
		Id:      "same",
		Name:    "Trip",
		Members: []*api.Member{{Id: "a", Name: "Alice"}},
	}
	if _, err := client.CreateGroup(context.Background(), connect.NewRequest(req)); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	req.Name = "Flat"
	_, err := client.CreateGroup(context.Background(), connect.NewRequest(req))
	assertCode(t, err, connect.CodeAlreadyExists)

	resp, err := client.GetGroup(context.Background(), connect.NewRequest(&api.GetGroupRequest{GroupId: "same"}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if resp.Msg.Group.Name != "Trip" {
		t.Errorf("name: expected 'Trip', got '%s'", resp.Msg.Group.Name)
	}
}

func TestCreateGroup_IncludesCaller(t *testing.T) {
	client := setupTestServer(t)

	token, err := auth.NewJWTManager(testSecret, time.Hour).Generate("z", "Zoe")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	tests := []struct {
		name    string
		members []*api.Member
		want    []string
	}{
		{"caller only", nil, []string{"Zoe"}},
		{"caller prepended", []*api.Member{{Id: "a", Name: "Alice"}}, []string{"Zoe", "Alice"}},
		{"caller already listed", []*api.Member{{Id: "a", Name: "Alice"}, {Name: "Zoe"}}, []string{"Alice", "Zoe"}},
		{"caller listed by id", []*api.Member{{Id: "z", Name: "Zo"}}, []string{"Zo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := connect.NewRequest(&api.CreateGroupRequest{Name: "Trip", Members: tt.members})
			req.Header().Set("Authorization", "Bearer "+token)

			resp, err := client.CreateGroup(context.Background(), req)
			if err != nil {
				t.Fatalf("CreateGroup failed: %v", err)
			}
			got := resp.Msg.Group.Members
			if len(got) != len(tt.want) {
				t.Fatalf("members: expected %d, got %d", len(tt.want), len(got))
			}
			for i, name := range tt.want {
				if got[i].Name != name {
					t.Errorf("member %d: expected '%s', got '%s'", i, name, got[i].Name)
				}
			}
			if got[0].Name == "Zoe" && got[0].Id != "z" {
				t.Errorf("caller id: expected 'z', got '%s'", got[0].Id)
			}
		})
	}
}

func TestListGroups_MostRecentFirst(t *testing.T) {
	client := setupTestServer(t)

	for _, name := range []string{"First", "Second"} {
		req := connect.NewRequest(&api.CreateGroupRequest{
			Name:    name,
			Members: []*api.Member{{Id: "a", Name: "Alice"}},
		})
		if _, err := client.CreateGroup(context.Background(), req); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
	}

	resp, err := client.ListGroups(context.Background(), connect.NewRequest(&api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(resp.Msg.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(resp.Msg.Groups))
	}
	if resp.Msg.Groups[0].Name != "Second" {
		t.Errorf("expected most recent group first, got '%s'", resp.Msg.Groups[0].Name)
	}
}

func TestGetGroup_Missing(t *testing.T) {
	client := setupTestServer(t)

	resp, err := client.GetGroup(context.Background(), connect.NewRequest(&api.GetGroupRequest{GroupId: "nope"}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if resp.Msg.Group != nil {
		t.Errorf("expected no group, got %+v", resp.Msg.Group)
	}
}

func TestRecordExpense_EqualSplit(t *testing.T) {
	client := setupTestServer(t)
	group := createTripGroup(t, client)

	expense := recordExpense(t, client, &api.RecordExpenseRequest{
		GroupId:     group.Id,
		Description: "Dinner",
		Amount:      dec("90"),
		Payer:       "Alice",
		SplitType:   "equal",
	})

	if expense.Id == "" {
		t.Error("expected non-empty expense ID")
	}
	if expense.Settled {
		t.Error("new expense should not be settled")
	}
	for _, id := range []string{"a", "b", "c"} {
		if !expense.Splits[id].Equal(dec("30")) {
			t.Errorf("split %s: expected 30, got %s", id, expense.Splits[id])
		}
	}

	balances := balancesByName(t, client, group.Id)
	want := map[string]string{"Alice": "60", "Bob": "-30", "Charlie": "-30"}
	for name, amount := range want {
		if !balances[name].Balance.Equal(dec(amount)) {
			t.Errorf("%s balance: expected %s, got %s", name, amount, balances[name].Balance)
		}
	}
	if len(balances["Alice"].Transactions) != 2 {
		t.Errorf("Alice transactions: expected 2, got %d", len(balances["Alice"].Transactions))
	}
}

func TestRecordExpense_CustomSplitDerivesPayerShare(t *testing.T) {
	client := setupTestServer(t)
	group := createTripGroup(t, client)

	expense := recordExpense(t, client, &api.RecordExpenseRequest{
		GroupId:     group.Id,
		Description: "Taxi",
		Amount:      dec("100"),
		Payer:       "Bob",
		SplitType:   "custom",
		Splits:      map[string]decimal.Decimal{"a": dec("70")},
	})

	if !expense.Splits["b"].Equal(dec("30")) {
		t.Errorf("payer share: expected 30, got %s", expense.Splits["b"])
	}

	balances := balancesByName(t, client, group.Id)
	want := map[string]string{"Alice": "-70", "Bob": "70", "Charlie": "0"}
	for name, amount := range want {
		if !balances[name].Balance.Equal(dec(amount)) {
			t.Errorf("%s balance: expected %s, got %s", name, amount, balances[name].Balance)
		}
	}
}

func TestRecordExpense_EqualSplitSharedMemberID(t *testing.T) {
	client := setupTestServer(t)

	resp, err := client.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name:    "Shared",
		Members: []*api.Member{{Id: "x", Name: "Alice"}, {Id: "x", Name: "Bob"}},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	recordExpense(t, client, &api.RecordExpenseRequest{
		GroupId:     resp.Msg.Group.Id,
		Description: "Dinner",
		Amount:      dec("100"),
		Payer:       "Alice",
		SplitType:   "equal",
	})

	balances := balancesByName(t, client, resp.Msg.Group.Id)
	want := map[string]string{"Alice": "50", "Bob": "-50"}
	for name, amount := range want {
		if !balances[name].Balance.Equal(dec(amount)) {
			t.Errorf("%s balance: expected %s, got %s", name, amount, balances[name].Balance)
		}
	}
}

func TestRecordExpense_Rejections(t *testing.T) {
	client := setupTestServer(t)
	group := createTripGroup(t, client)

	tests := []struct {
		name string
		req  *api.RecordExpenseRequest
		code connect.Code
	}{
		{
			name: "unknown group",
			req:  &api.RecordExpenseRequest{GroupId: "nope", Description: "x", Amount: dec("10"), Payer: "Alice", SplitType: "equal"},
			code: connect.CodeNotFound,
		},
		{
			name: "missing group id",
			req:  &api.RecordExpenseRequest{Description: "x", Amount: dec("10"), Payer: "Alice", SplitType: "equal"},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "payer outside group",
			req:  &api.RecordExpenseRequest{GroupId: group.Id, Description: "x", Amount: dec("10"), Payer: "Mallory", SplitType: "equal"},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "non-positive amount",
			req:  &api.RecordExpenseRequest{GroupId: group.Id, Description: "x", Amount: dec("0"), Payer: "Alice", SplitType: "equal"},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "missing description",
			req:  &api.RecordExpenseRequest{GroupId: group.Id, Amount: dec("10"), Payer: "Alice", SplitType: "equal"},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "unknown split type",
			req:  &api.RecordExpenseRequest{GroupId: group.Id, Description: "x", Amount: dec("10"), Payer: "Alice", SplitType: "percent"},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "custom split over amount",
			req: &api.RecordExpenseRequest{
				GroupId: group.Id, Description: "x", Amount: dec("100"), Payer: "Alice", SplitType: "custom",
				Splits: map[string]decimal.Decimal{"a": dec("50"), "b": dec("60")},
			},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "no payer and unauthenticated",
			req:  &api.RecordExpenseRequest{GroupId: group.Id, Description: "x", Amount: dec("10"), SplitType: "equal"},
			code: connect.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.RecordExpense(context.Background(), connect.NewRequest(tt.req))
			assertCode(t, err, tt.code)
		})
	}

	resp, err := client.GetGroup(context.Background(), connect.NewRequest(&api.GetGroupRequest{GroupId: group.Id}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if len(resp.Msg.Group.Expenses) != 0 {
		t.Errorf("rejected expenses must not be stored, got %d", len(resp.Msg.Group.Expenses))
	}
}

func TestRecordExpense_PayerDefaultsToCaller(t *testing.T) {
	client := setupTestServer(t)
	group := createTripGroup(t, client)

	token, err := auth.NewJWTManager(testSecret, time.Hour).Generate("c", "Charlie")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	req := connect.NewRequest(&api.RecordExpenseRequest{
		GroupId:     group.Id,
		Description: "Snacks",
		Amount:      dec("30"),
		SplitType:   "equal",
	})
	req.Header().Set("Authorization", "Bearer "+token)

	resp, err := client.RecordExpense(context.Background(), req)
	if err != nil {
		t.Fatalf("RecordExpense failed: %v", err)
	}
	if resp.Msg.Expense.Payer != "Charlie" {
		t.Errorf("payer: expected 'Charlie', got '%s'", resp.Msg.Expense.Payer)
	}
}

func TestMarkExpenseSettled_KeepsBalances(t *testing.T) {
	client := setupTestServer(t)
	group := createTripGroup(t, client)

	expense := recordExpense(t, client, &api.RecordExpenseRequest{
		GroupId:     group.Id,
		Description: "Dinner",
		Amount:      dec("90"),
		Payer:       "Alice",
		SplitType:   "equal",
	})
	before := balancesByName(t, client, group.Id)

	_, err := client.MarkExpenseSettled(context.Background(), connect.NewRequest(&api.MarkExpenseSettledRequest{
		GroupId:   group.Id,
		ExpenseId: expense.Id,
	}))
	if err != nil {
		t.Fatalf("MarkExpenseSettled failed: %v", err)
	}

	resp, err := client.GetGroup(context.Background(), connect.NewRequest(&api.GetGroupRequest{GroupId: group.Id}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if !resp.Msg.Group.Expenses[0].Settled {
		t.Error("expected expense to be settled")
	}

	after := balancesByName(t, client, group.Id)
	for name, b := range before {
		if !after[name].Balance.Equal(b.Balance) {
			t.Errorf("%s balance changed after settle: %s -> %s", name, b.Balance, after[name].Balance)
		}
	}
}

func TestDeleteGroup(t *testing.T) {
	client := setupTestServer(t)
	group := createTripGroup(t, client)

	if _, err := client.DeleteGroup(context.Background(), connect.NewRequest(&api.DeleteGroupRequest{GroupId: group.Id})); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	// Deleting again is not an error.
	if _, err := client.DeleteGroup(context.Background(), connect.NewRequest(&api.DeleteGroupRequest{GroupId: group.Id})); err != nil {
		t.Fatalf("second DeleteGroup failed: %v", err)
	}

	balances, err := client.GetGroupBalances(context.Background(), connect.NewRequest(&api.GetGroupBalancesRequest{GroupId: group.Id}))
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}
	if len(balances.Msg.Balances) != 0 {
		t.Errorf("expected no balances for deleted group, got %d", len(balances.Msg.Balances))
	}
}

func TestUserBalances(t *testing.T) {
	client := setupTestServer(t)
	trip := createTripGroup(t, client)

	flatResp, err := client.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name:    "Flat",
		Members: []*api.Member{{Id: "a", Name: "Alice"}, {Id: "b", Name: "Bob"}},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	flat := flatResp.Msg.Group

	recordExpense(t, client, &api.RecordExpenseRequest{
		GroupId: trip.Id, Description: "Dinner", Amount: dec("90"), Payer: "Alice", SplitType: "equal",
	})
	recordExpense(t, client, &api.RecordExpenseRequest{
		GroupId: flat.Id, Description: "Rent", Amount: dec("200"), Payer: "Bob", SplitType: "equal",
	})

	total, err := client.GetUserTotalBalance(context.Background(), connect.NewRequest(&api.GetUserTotalBalanceRequest{
		UserName: "Alice",
	}))
	if err != nil {
		t.Fatalf("GetUserTotalBalance failed: %v", err)
	}
	// +60 in the trip, -100 in the flat.
	if !total.Msg.Balance.Equal(dec("-40")) {
		t.Errorf("total: expected -40, got %s", total.Msg.Balance)
	}
	if !total.Msg.Owed.Equal(dec("-100")) {
		t.Errorf("owed: expected -100, got %s", total.Msg.Owed)
	}
	if !total.Msg.Receivable.Equal(dec("60")) {
		t.Errorf("receivable: expected 60, got %s", total.Msg.Receivable)
	}

	perGroup, err := client.GetUserGroupBalances(context.Background(), connect.NewRequest(&api.GetUserGroupBalancesRequest{
		UserName: "Alice",
	}))
	if err != nil {
		t.Fatalf("GetUserGroupBalances failed: %v", err)
	}
	if len(perGroup.Msg.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(perGroup.Msg.Groups))
	}
	if perGroup.Msg.Groups[0].GroupId != flat.Id || !perGroup.Msg.Groups[0].Balance.Equal(dec("-100")) {
		t.Errorf("first group: expected flat at -100, got %+v", perGroup.Msg.Groups[0])
	}

	summary, err := client.GetCounterpartySummary(context.Background(), connect.NewRequest(&api.GetCounterpartySummaryRequest{
		UserName: "Alice",
	}))
	if err != nil {
		t.Fatalf("GetCounterpartySummary failed: %v", err)
	}
	if len(summary.Msg.Counterparties) != 2 {
		t.Fatalf("expected 2 counterparties, got %d", len(summary.Msg.Counterparties))
	}
	bob := summary.Msg.Counterparties[0]
	if bob.Name != "Bob" {
		t.Fatalf("expected Bob first (largest |net|), got '%s'", bob.Name)
	}
	// Bob owes 30 for dinner, Alice owes 100 for rent.
	if !bob.Net.Equal(dec("-70")) || len(bob.Groups) != 2 {
		t.Errorf("Bob: expected net -70 over 2 groups, got %s over %d", bob.Net, len(bob.Groups))
	}
}

func TestUserBalances_ResolveCaller(t *testing.T) {
	client := setupTestServer(t)
	group := createTripGroup(t, client)
	recordExpense(t, client, &api.RecordExpenseRequest{
		GroupId: group.Id, Description: "Dinner", Amount: dec("90"), Payer: "Alice", SplitType: "equal",
	})

	_, err := client.GetUserTotalBalance(context.Background(), connect.NewRequest(&api.GetUserTotalBalanceRequest{}))
	assertCode(t, err, connect.CodeInvalidArgument)

	token, err := auth.NewJWTManager(testSecret, time.Hour).Generate("b", "Bob")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	req := connect.NewRequest(&api.GetUserTotalBalanceRequest{})
	req.Header().Set("Authorization", "Bearer "+token)

	resp, err := client.GetUserTotalBalance(context.Background(), req)
	if err != nil {
		t.Fatalf("GetUserTotalBalance failed: %v", err)
	}
	if resp.Msg.UserName != "Bob" {
		t.Errorf("user: expected 'Bob', got '%s'", resp.Msg.UserName)
	}
	if !resp.Msg.Balance.Equal(dec("-30")) {
		t.Errorf("balance: expected -30, got %s", resp.Msg.Balance)
	}
}
