package swap

import "fmt"

// 分区标题
const (
	TitleAll      = "All Swap Requests"
	TitleIncoming = "Requests for Your Approval"
	TitleOutgoing = "Your Swap Requests"
)

// SectionKind 分区类型
type SectionKind string

const (
	SectionAll      SectionKind = "all"
	SectionIncoming SectionKind = "incoming"
	SectionOutgoing SectionKind = "outgoing"
)

// Item 列表项：申请 + 查看者是否可操作
type Item struct {
	Request    SwapRequest
	Actionable bool
}

// Section 一个带标题的列表
//
// Count 的口径：
//   - all: 筛选后的条目数
//   - incoming / outgoing: 筛选、分组后仍处于 pending 的条目数
type Section struct {
	Kind         SectionKind
	Title        string
	Count        int
	Items        []Item
	EmptyMessage string
}

// View 渲染层消费的完整视图
type View struct {
	Filter   Filter
	Role     Role
	Sections []Section
}

// AssembleView 组合筛选结果与角色，生成 All 或 Incoming/Outgoing 视图
func AssembleView(reqs []SwapRequest, f Filter, v Viewer, p Policy) View {
	res := Apply(reqs, f, v)
	view := View{Filter: f, Role: v.Role}

	if !res.Partitioned {
		items := toItems(res.All, v, p)
		view.Sections = []Section{{
			Kind:         SectionAll,
			Title:        TitleAll,
			Count:        len(items),
			Items:        items,
			EmptyMessage: emptyMessage(SectionAll, f),
		}}
		return view
	}

	incoming := toItems(res.Partition.Incoming, v, p)
	outgoing := toItems(res.Partition.Outgoing, v, p)
	view.Sections = []Section{
		{
			Kind:         SectionIncoming,
			Title:        TitleIncoming,
			Count:        countPending(incoming),
			Items:        incoming,
			EmptyMessage: emptyMessage(SectionIncoming, f),
		},
		{
			Kind:         SectionOutgoing,
			Title:        TitleOutgoing,
			Count:        countPending(outgoing),
			Items:        outgoing,
			EmptyMessage: emptyMessage(SectionOutgoing, f),
		},
	}
	return view
}

// Section 按类型取分区
func (v View) Section(kind SectionKind) (Section, bool) {
	for _, s := range v.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return Section{}, false
}

func toItems(reqs []SwapRequest, v Viewer, p Policy) []Item {
	items := make([]Item, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, Item{Request: r, Actionable: p.Actionable(r, v)})
	}
	return items
}

func countPending(items []Item) int {
	n := 0
	for _, it := range items {
		if it.Request.Status == StatusPending {
			n++
		}
	}
	return n
}

// emptyMessage 空状态文案，按当前筛选参数化
func emptyMessage(kind SectionKind, f Filter) string {
	all := f == FilterAll
	switch kind {
	case SectionIncoming:
		if all {
			return "No requests awaiting your approval"
		}
		return fmt.Sprintf("No %s requests awaiting your approval", f)
	case SectionOutgoing:
		if all {
			return "You have not made any swap requests"
		}
		return fmt.Sprintf("You have no %s swap requests", f)
	default:
		if all {
			return "No swap requests found"
		}
		return fmt.Sprintf("No %s swap requests found", f)
	}
}
