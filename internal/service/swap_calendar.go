package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"shiftswap/internal/swap"
)

// ErrCalendarNoShift 申请中没有可解析日期的班次
var ErrCalendarNoShift = errors.New("班次缺少有效日期，无法生成日历")

const (
	shiftDateLayout = "2006-01-02"
	shiftTimeLayout = "15:04"
	calendarProdID  = "-//shiftswap//Shift Swap Calendar//EN"
)

// BuildSwapCalendar 将申请涉及的两个班次导出为 iCalendar（每个班次一个 VEVENT）。
//
// 班次时间按 "HH:MM-HH:MM" 解析，结束早于开始视为跨天；
// 时间缺失或无法解析时生成全天事件；日期无法解析的班次跳过。
func BuildSwapCalendar(r swap.SwapRequest, loc *time.Location, now time.Time) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProdID)

	desc := swap.Compose(r).Text
	shifts := []struct {
		suffix  string
		shift   swap.Shift
		summary string
	}{
		{"given", r.GivenShift, fmt.Sprintf("Swap: %s gives shift to %s", partyName(r.Requester), partyName(r.Counterparty))},
		{"taken", r.TakenShift, fmt.Sprintf("Swap: %s takes shift from %s", partyName(r.Requester), partyName(r.Counterparty))},
	}

	added := 0
	for _, sh := range shifts {
		day, err := time.ParseInLocation(shiftDateLayout, strings.TrimSpace(sh.shift.Date), loc)
		if err != nil {
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("%s-%s@shiftswap", r.ID, sh.suffix))
		event.SetDtStampTime(now)
		event.SetCreatedTime(r.CreatedAt)
		event.SetSummary(withShiftType(sh.summary, sh.shift.ShiftType))
		event.SetDescription(desc)
		event.SetStatus(eventStatus(r.Status))

		if start, end, ok := parseTimeRange(day, sh.shift.TimeRange); ok {
			event.SetStartAt(start)
			event.SetEndAt(end)
		} else {
			event.SetAllDayStartAt(day)
			event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		}
		added++
	}

	if added == 0 {
		return "", ErrCalendarNoShift
	}
	return cal.Serialize(), nil
}

// parseTimeRange 解析 "09:00-17:00"；结束不晚于开始时顺延一天
func parseTimeRange(day time.Time, tr string) (time.Time, time.Time, bool) {
	parts := strings.SplitN(strings.TrimSpace(tr), "-", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, false
	}
	from, err1 := time.Parse(shiftTimeLayout, strings.TrimSpace(parts[0]))
	to, err2 := time.Parse(shiftTimeLayout, strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return time.Time{}, time.Time{}, false
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), from.Hour(), from.Minute(), 0, 0, day.Location())
	end := time.Date(day.Year(), day.Month(), day.Day(), to.Hour(), to.Minute(), 0, 0, day.Location())
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, true
}

func eventStatus(s swap.Status) ics.ObjectStatus {
	switch s {
	case swap.StatusApproved:
		return ics.ObjectStatusConfirmed
	case swap.StatusDeclined:
		return ics.ObjectStatusCancelled
	default:
		return ics.ObjectStatusTentative
	}
}

func partyName(p swap.Party) string {
	if p.Name != "" {
		return p.Name
	}
	return p.UserID
}

func withShiftType(summary, shiftType string) string {
	if shiftType == "" {
		return summary
	}
	return summary + " (" + shiftType + ")"
}
