package swap

// FilterByStatus 按状态筛选，保持原有相对顺序
func FilterByStatus(reqs []SwapRequest, f Filter) []SwapRequest {
	out := make([]SwapRequest, 0, len(reqs))
	for _, r := range reqs {
		if f.Matches(r.Status) {
			out = append(out, r)
		}
	}
	return out
}

// Partition 普通用户视角下的分组结果
//   - Incoming: 对方为查看者，等待其决定
//   - Outgoing: 申请人为查看者，等待他人决定
type Partition struct {
	Incoming []SwapRequest
	Outgoing []SwapRequest
}

// PartitionFor 将集合划分为 incoming / outgoing。
// 与查看者无关的申请不进入任何分组；requester ≠ counterparty 保证两组不相交。
func PartitionFor(reqs []SwapRequest, v Viewer) Partition {
	p := Partition{
		Incoming: make([]SwapRequest, 0),
		Outgoing: make([]SwapRequest, 0),
	}
	for _, r := range reqs {
		switch v.UserID {
		case r.Counterparty.UserID:
			p.Incoming = append(p.Incoming, r)
		case r.Requester.UserID:
			p.Outgoing = append(p.Outgoing, r)
		}
	}
	return p
}

// VisibleTo 查看者是否可见该申请
func VisibleTo(r SwapRequest, v Viewer) bool {
	if v.Role.IsPrivileged() {
		return true
	}
	return v.UserID != "" && (r.Requester.UserID == v.UserID || r.Counterparty.UserID == v.UserID)
}

// FilterResult 筛选结果：特权角色仅有 All，普通用户仅有分组
type FilterResult struct {
	Partitioned bool
	All         []SwapRequest
	Partition   Partition
}

// Apply 先按状态筛选，再按查看者角色决定是否分组
func Apply(reqs []SwapRequest, f Filter, v Viewer) FilterResult {
	filtered := FilterByStatus(reqs, f)
	if v.Role.IsPrivileged() {
		return FilterResult{All: filtered}
	}
	return FilterResult{Partitioned: true, Partition: PartitionFor(filtered, v)}
}
