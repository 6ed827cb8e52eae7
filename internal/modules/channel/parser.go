// README: Free-text operator message decoder; the fragile parsing is contained here.
package channel

import (
	"regexp"
	"strconv"
	"strings"

	"wajba/internal/types"
)

// Operators write by hand; markers are matched anywhere in the text.
// Deployments extend these tables rather than touching the decode logic.
var (
	rejectMarkers    = []string{"تم رفض", "مرفوض", "نرفض الطلب"}
	preparingMarkers = []string{"جاري التحضير", "بدأ التحضير", "تم البدء بالتحضير", "قيد التحضير"}
	complaintMarkers = []string{"شكوى", "إلغاء بشكوى"}
)

var (
	// order ids appear after a label ("معرف الطلب: X...") or as a bare
	// 15-char alphanumeric token
	labelledIDRe = regexp.MustCompile(`(?:معرف الطلب|رقم الطلب)\s*[:：]?\s*([A-Za-z0-9]{15})`)
	bareIDRe     = regexp.MustCompile(`\b[A-Za-z0-9]{15}\b`)
	reasonRe     = regexp.MustCompile(`السبب\s*[:：]\s*(.+)`)
	bareIntRe    = regexp.MustCompile(`^\s*([0-9]{1,3})\s*$`)
)

// maxRemainingMinutes bounds a valid remaining-time answer.
const maxRemainingMinutes = 150

// Decode classifies free operator text in priority order: rejection,
// preparation start, complaint cancellation, then anything with an
// extractable order id. Reply-correlated remaining-time answers are
// handled by the dispatcher, which sits between complaint and generic
// priority.
func Decode(text string) Event {
	id := extractOrderID(text)

	if containsAny(text, rejectMarkers) && id != "" {
		return OrderRejected{OrderID: id}
	}
	if containsAny(text, preparingMarkers) && id != "" {
		return PreparationStarted{OrderID: id}
	}
	if containsAny(text, complaintMarkers) && id != "" {
		reason := ""
		if m := reasonRe.FindStringSubmatch(text); m != nil {
			reason = strings.TrimSpace(m[1])
		}
		return ComplaintCancelled{OrderID: id, Reason: reason}
	}
	if id != "" {
		return GenericStatusUpdate{OrderID: id, Text: strings.TrimSpace(text)}
	}
	return Unrecognized{}
}

// ParseRemainingMinutes reads a bare-integer reply in [0, maxRemainingMinutes].
func ParseRemainingMinutes(text string) (int, bool) {
	m := bareIntRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > maxRemainingMinutes {
		return 0, false
	}
	return n, true
}

func extractOrderID(text string) types.ID {
	if m := labelledIDRe.FindStringSubmatch(text); m != nil {
		return types.ID(m[1])
	}
	if m := bareIDRe.FindString(text); m != "" {
		return types.ID(m)
	}
	return ""
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
