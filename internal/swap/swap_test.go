package swap

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

// ── 测试辅助 ──

var testCreatedAt = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newRequest(id, requesterID, counterpartyID string, status Status) SwapRequest {
	return SwapRequest{
		ID:           id,
		Requester:    Party{UserID: requesterID, Name: "User " + requesterID},
		Counterparty: Party{UserID: counterpartyID, Name: "User " + counterpartyID},
		GivenShift:   Shift{Date: "2026-03-10", TimeRange: "09:00-17:00", ShiftType: "Morning"},
		TakenShift:   Shift{Date: "2026-03-12", TimeRange: "13:00-21:00", ShiftType: "Evening"},
		Status:       status,
		CreatedAt:    testCreatedAt,
	}
}

// sampleCollection 1→2 pending, 2→1 approved, 1→3 declined, 3→2 pending
func sampleCollection() []SwapRequest {
	return []SwapRequest{
		newRequest("a", "1", "2", StatusPending),
		newRequest("b", "2", "1", StatusApproved),
		newRequest("c", "1", "3", StatusDeclined),
		newRequest("d", "3", "2", StatusPending),
	}
}

func ids(reqs []SwapRequest) []string {
	out := make([]string, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.ID)
	}
	return out
}

// ════════════════════════════════════════════════════════════
// 类型与校验
// ════════════════════════════════════════════════════════════

func TestSwapRequest_Validate(t *testing.T) {
	if err := newRequest("a", "1", "2", StatusPending).Validate(); err != nil {
		t.Errorf("合法申请不应报错: %v", err)
	}
	if err := newRequest("a", "1", "1", StatusPending).Validate(); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("同一人应返回 ErrInvalidRequest，实际: %v", err)
	}
	if err := newRequest("a", "", "2", StatusPending).Validate(); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("缺少申请人应返回 ErrInvalidRequest，实际: %v", err)
	}
	if err := newRequest("a", "1", "2", Status("cancelled")).Validate(); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("未知状态应返回 ErrInvalidRequest，实际: %v", err)
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"", FilterAll, false},
		{"all", FilterAll, false},
		{"pending", FilterPending, false},
		{"approved", FilterApproved, false},
		{"declined", FilterDeclined, false},
		{"cancelled", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFilter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFilter(%q) err=%v，期望 wantErr=%v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFilter(%q)=%q，期望 %q", tt.in, got, tt.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"user", "teamleader", "admin"} {
		if _, ok := ParseRole(s); !ok {
			t.Errorf("ParseRole(%q) 应成功", s)
		}
	}
	if _, ok := ParseRole("leader"); ok {
		t.Error("ParseRole(leader) 应失败")
	}
}

// ════════════════════════════════════════════════════════════
// RequestFilter
// ════════════════════════════════════════════════════════════

func TestFilterByStatus_AllIsIdentity(t *testing.T) {
	reqs := sampleCollection()
	got := FilterByStatus(reqs, FilterAll)
	if !reflect.DeepEqual(got, reqs) {
		t.Errorf("filter=all 应原样返回，实际 %v", ids(got))
	}
}

func TestFilterByStatus_PreservesOrder(t *testing.T) {
	got := ids(FilterByStatus(sampleCollection(), FilterPending))
	want := []string{"a", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("期望 %v，实际 %v", want, got)
	}
}

func TestFilterByStatus_Empty(t *testing.T) {
	got := FilterByStatus(nil, FilterDeclined)
	if got == nil || len(got) != 0 {
		t.Errorf("空集合应返回空切片，实际 %v", got)
	}
}

func TestPartitionFor_DisjointAndCovering(t *testing.T) {
	reqs := sampleCollection()
	for _, uid := range []string{"1", "2", "3"} {
		v := Viewer{UserID: uid, Role: RoleUser}
		p := PartitionFor(reqs, v)

		seen := make(map[string]int)
		for _, r := range p.Incoming {
			if r.Counterparty.UserID != uid {
				t.Errorf("viewer=%s incoming 中出现非本人待处理申请 %s", uid, r.ID)
			}
			seen[r.ID]++
		}
		for _, r := range p.Outgoing {
			if r.Requester.UserID != uid {
				t.Errorf("viewer=%s outgoing 中出现非本人发起申请 %s", uid, r.ID)
			}
			seen[r.ID]++
		}
		for _, r := range reqs {
			if !VisibleTo(r, v) {
				if seen[r.ID] != 0 {
					t.Errorf("viewer=%s 不应看到申请 %s", uid, r.ID)
				}
				continue
			}
			if seen[r.ID] != 1 {
				t.Errorf("viewer=%s 申请 %s 应恰好出现一次，实际 %d 次", uid, r.ID, seen[r.ID])
			}
		}
	}
}

func TestApply_PrivilegedNotPartitioned(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleTeamLeader} {
		res := Apply(sampleCollection(), FilterAll, Viewer{UserID: "9", Role: role})
		if res.Partitioned {
			t.Errorf("role=%s 不应分组", role)
		}
		if len(res.All) != 4 {
			t.Errorf("role=%s 期望 4 条，实际 %d", role, len(res.All))
		}
	}
}

func TestApply_UserPartitionedAfterFilter(t *testing.T) {
	res := Apply(sampleCollection(), FilterPending, Viewer{UserID: "2", Role: RoleUser})
	if !res.Partitioned {
		t.Fatal("普通用户应分组")
	}
	if got := ids(res.Partition.Incoming); !reflect.DeepEqual(got, []string{"a", "d"}) {
		t.Errorf("incoming 期望 [a d]，实际 %v", got)
	}
	if len(res.Partition.Outgoing) != 0 {
		t.Errorf("outgoing 期望为空，实际 %v", ids(res.Partition.Outgoing))
	}
}

// ════════════════════════════════════════════════════════════
// RequestLifecycle（纯函数）
// ════════════════════════════════════════════════════════════

func TestPolicy_ApproveByCounterparty(t *testing.T) {
	reqs := sampleCollection()
	before := reqs[0]

	got, err := DefaultPolicy().Approve(reqs, "a", Viewer{UserID: "2", Role: RoleUser})
	if err != nil {
		t.Fatalf("对方同意应成功: %v", err)
	}
	if got.Status != StatusApproved {
		t.Errorf("期望 status=approved，实际=%s", got.Status)
	}
	want := before
	want.Status = StatusApproved
	if !reflect.DeepEqual(got, want) {
		t.Errorf("除状态外字段不应变化: %+v", got)
	}
	if reqs[0].Status != StatusPending {
		t.Error("纯函数不应修改入参集合")
	}
}

func TestPolicy_DeclineUnauthorizedForUsers(t *testing.T) {
	reqs := sampleCollection()
	for _, uid := range []string{"1", "3", "99"} {
		_, err := DefaultPolicy().Decline(reqs, "a", Viewer{UserID: uid, Role: RoleUser})
		if !errors.Is(err, ErrUnauthorized) {
			t.Errorf("viewer=%s 期望 ErrUnauthorized，实际: %v", uid, err)
		}
	}
}

func TestPolicy_AdminOverride(t *testing.T) {
	reqs := sampleCollection()
	admin := Viewer{UserID: "9", Role: RoleAdmin}
	leader := Viewer{UserID: "8", Role: RoleTeamLeader}

	if _, err := DefaultPolicy().Approve(reqs, "a", admin); err != nil {
		t.Errorf("开启覆盖时 admin 应可处理: %v", err)
	}
	if _, err := DefaultPolicy().Decline(reqs, "d", leader); err != nil {
		t.Errorf("开启覆盖时 teamleader 应可处理: %v", err)
	}

	strict := Policy{AdminOverride: false}
	if _, err := strict.Approve(reqs, "a", admin); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("关闭覆盖时 admin 期望 ErrUnauthorized，实际: %v", err)
	}
	if _, err := strict.Approve(reqs, "a", Viewer{UserID: "2", Role: RoleUser}); err != nil {
		t.Errorf("关闭覆盖时对方仍应可处理: %v", err)
	}
}

func TestPolicy_TerminalIsInvalidState(t *testing.T) {
	reqs := sampleCollection()
	for _, id := range []string{"b", "c"} {
		for _, action := range []Action{ActionApprove, ActionDecline} {
			_, err := DefaultPolicy().Decide(reqs, id, action, Viewer{UserID: "9", Role: RoleAdmin})
			if !errors.Is(err, ErrInvalidState) {
				t.Errorf("id=%s action=%s 期望 ErrInvalidState，实际: %v", id, action, err)
			}
		}
	}
}

func TestPolicy_NotFound(t *testing.T) {
	_, err := DefaultPolicy().Approve(sampleCollection(), "999", Viewer{UserID: "2", Role: RoleUser})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("期望 ErrNotFound，实际: %v", err)
	}
}

func TestPolicy_UnknownAction(t *testing.T) {
	_, err := DefaultPolicy().Transition(newRequest("a", "1", "2", StatusPending), Action("cancel"), Viewer{UserID: "2", Role: RoleUser})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("期望 ErrInvalidRequest，实际: %v", err)
	}
}

// ════════════════════════════════════════════════════════════
// ViewAssembler
// ════════════════════════════════════════════════════════════

func TestAssembleView_UserSections(t *testing.T) {
	view := AssembleView(sampleCollection(), FilterAll, Viewer{UserID: "1", Role: RoleUser}, DefaultPolicy())
	if len(view.Sections) != 2 {
		t.Fatalf("普通用户期望 2 个分区，实际 %d", len(view.Sections))
	}

	in, _ := view.Section(SectionIncoming)
	out, _ := view.Section(SectionOutgoing)
	if in.Title != TitleIncoming || out.Title != TitleOutgoing {
		t.Errorf("分区标题错误: %q / %q", in.Title, out.Title)
	}
	// incoming: b(approved)；outgoing: a(pending), c(declined)
	if len(in.Items) != 1 || in.Count != 0 {
		t.Errorf("incoming 期望 1 条 / pending 0，实际 %d / %d", len(in.Items), in.Count)
	}
	if len(out.Items) != 2 || out.Count != 1 {
		t.Errorf("outgoing 期望 2 条 / pending 1，实际 %d / %d", len(out.Items), out.Count)
	}
	for _, it := range out.Items {
		if it.Actionable {
			t.Errorf("申请人不应可处理自己发起的申请 %s", it.Request.ID)
		}
	}
}

func TestAssembleView_IncomingActionable(t *testing.T) {
	view := AssembleView(sampleCollection(), FilterPending, Viewer{UserID: "2", Role: RoleUser}, DefaultPolicy())
	in, _ := view.Section(SectionIncoming)
	if in.Count != 2 {
		t.Errorf("incoming pending 期望 2，实际 %d", in.Count)
	}
	for _, it := range in.Items {
		if !it.Actionable {
			t.Errorf("对方应可处理 pending 申请 %s", it.Request.ID)
		}
	}
}

func TestAssembleView_AdminCountsPostFilter(t *testing.T) {
	view := AssembleView(sampleCollection(), FilterPending, Viewer{UserID: "9", Role: RoleAdmin}, DefaultPolicy())
	if len(view.Sections) != 1 {
		t.Fatalf("admin 期望 1 个分区，实际 %d", len(view.Sections))
	}
	all := view.Sections[0]
	if all.Title != TitleAll || all.Kind != SectionAll {
		t.Errorf("分区错误: %+v", all)
	}
	if all.Count != 2 {
		t.Errorf("count 应为筛选后数量 2，实际 %d", all.Count)
	}
	for _, it := range all.Items {
		if !it.Actionable {
			t.Errorf("admin 开启覆盖时应可处理 %s", it.Request.ID)
		}
	}
}

func TestAssembleView_EmptyMessages(t *testing.T) {
	tests := []struct {
		filter Filter
		viewer Viewer
		kind   SectionKind
		want   string
	}{
		{FilterAll, Viewer{UserID: "9", Role: RoleAdmin}, SectionAll, "No swap requests found"},
		{FilterDeclined, Viewer{UserID: "9", Role: RoleAdmin}, SectionAll, "No declined swap requests found"},
		{FilterAll, Viewer{UserID: "5", Role: RoleUser}, SectionIncoming, "No requests awaiting your approval"},
		{FilterPending, Viewer{UserID: "5", Role: RoleUser}, SectionIncoming, "No pending requests awaiting your approval"},
		{FilterAll, Viewer{UserID: "5", Role: RoleUser}, SectionOutgoing, "You have not made any swap requests"},
		{FilterApproved, Viewer{UserID: "5", Role: RoleUser}, SectionOutgoing, "You have no approved swap requests"},
	}
	for _, tt := range tests {
		view := AssembleView(nil, tt.filter, tt.viewer, DefaultPolicy())
		s, ok := view.Section(tt.kind)
		if !ok {
			t.Errorf("filter=%s 缺少分区 %s", tt.filter, tt.kind)
			continue
		}
		if s.EmptyMessage != tt.want {
			t.Errorf("filter=%s kind=%s 期望 %q，实际 %q", tt.filter, tt.kind, tt.want, s.EmptyMessage)
		}
	}
}

// ════════════════════════════════════════════════════════════
// 场景
// ════════════════════════════════════════════════════════════

func TestScenario_RequesterSeesOutgoingOnly(t *testing.T) {
	reqs := []SwapRequest{newRequest("1", "1", "2", StatusPending)}
	view := AssembleView(reqs, FilterAll, Viewer{UserID: "1", Role: RoleUser}, DefaultPolicy())

	in, _ := view.Section(SectionIncoming)
	out, _ := view.Section(SectionOutgoing)
	if len(in.Items) != 0 {
		t.Errorf("incoming 应为空，实际 %d", len(in.Items))
	}
	if len(out.Items) != 1 || out.Items[0].Request.ID != "1" {
		t.Errorf("outgoing 应仅含申请 1，实际 %+v", out.Items)
	}
}

func TestScenario_AdminDeclinedEmpty(t *testing.T) {
	reqs := []SwapRequest{newRequest("1", "1", "2", StatusPending)}
	view := AssembleView(reqs, FilterDeclined, Viewer{UserID: "9", Role: RoleAdmin}, DefaultPolicy())

	if len(view.Sections) != 1 {
		t.Fatalf("期望 1 个分区，实际 %d", len(view.Sections))
	}
	s := view.Sections[0]
	if s.Title != "All Swap Requests" || s.Count != 0 || len(s.Items) != 0 {
		t.Errorf("期望空的 All Swap Requests，实际 %+v", s)
	}
	if s.EmptyMessage != "No declined swap requests found" {
		t.Errorf("空状态文案错误: %q", s.EmptyMessage)
	}
}
