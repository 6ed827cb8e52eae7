// README: User-facing message copy (Arabic) and formatting helpers.
package session

import (
	"fmt"
	"strings"

	"wajba/internal/modules/registry"
	"wajba/internal/types"
)

const (
	msgWelcome        = "أهلاً بك! ما اسمك الكامل؟"
	msgAskPhone       = "أرسل رقم هاتفك."
	msgPhoneInvalid   = "رقم الهاتف غير صالح، أرسل الأرقام فقط."
	msgAskCode        = "أرسل رمز التحقق الذي وصلك."
	msgCodeWrong      = "الرمز غير صحيح، حاول مرة أخرى."
	msgAskProvince    = "اختر محافظتك:"
	msgAskCity        = "اختر مدينتك:"
	msgAskLocation    = "أرسل موقعك أو اكتب عنوانك."
	msgMainMenu       = "القائمة الرئيسية:"
	msgChooseRest     = "اختر المطعم:"
	msgChooseCategory = "اختر القسم:"
	msgChooseMeal     = "اختر الوجبة:"
	msgChooseSize     = "اختر الحجم:"
	msgCartUpdated    = "تمت الإضافة إلى السلة."
	msgCartEmpty      = "سلتك فارغة، أضف وجبة أولاً."
	msgAskNotes       = "أضف ملاحظات للطلب أو تجاوز."
	msgConfirmAddr    = "هل التوصيل إلى هذا العنوان؟\n%s"
	msgOrderPlaced    = "تم إرسال طلبك إلى المطعم، رقم الطلب %d."
	msgOrderAborted   = "تم إلغاء الطلب قبل الإرسال."
	msgStoreFailure   = "تعذر حفظ الطلب حالياً، حاول مرة أخرى."
	msgSendFailure    = "حدث خطأ مؤقت، حاول مرة أخرى."
	msgCancelConfirm  = "هل أنت متأكد من إلغاء الطلب؟"
	msgCancelled      = "تم إلغاء طلبك."
	msgCancelTooLate  = "مضى أكثر من ١٠ دقائق، يمكنك تذكير المطعم أو تقديم شكوى."
	msgCancelKept     = "تم الإبقاء على الطلب."
	msgReminderSent   = "تم تذكير المطعم بطلبك."
	msgReminderUsed   = "استخدمت التذكير لهذا الطلب من قبل."
	msgUrgeCooldown   = "يمكنك الاستعجال مرة كل ١٥ دقيقة، تبقى %d دقيقة."
	msgHowLongSent    = "سألنا المطعم عن الوقت المتبقي."
	msgRemaining      = "المطعم: باقي %d دقيقة على طلبك."
	msgReportTooEarly = "الشكوى متاحة بعد ٣٠ دقيقة من الطلب، تبقى %d دقيقة."
	msgReportDone     = "تم إلغاء الطلب وتسجيل الشكوى."
	msgRejected       = "نعتذر، رفض المطعم طلبك."
	msgPreparing      = "بدأ المطعم بتحضير طلبك."
	msgComplaintDone  = "تم إلغاء طلبك: %s"
	msgAskRating      = "وصل طلبك! قيم المطعم من ١ إلى ٥."
	msgThanksRating   = "شكراً لتقييمك!"
	msgOrderFinal     = "هذا الطلب منتهٍ بالفعل."
	msgCooldown       = "لا يمكنك الطلب الآن (%s)، انتظر %d دقيقة."
	msgEditPending    = "لا يمكن البدء من جديد الآن، لديك عملية تعديل قيد الإكمال."
	msgUnrecognized   = "لم أفهم ذلك، استخدم الأزرار أو اتبع التعليمات."

	// operator-channel copy
	msgOpReminder = "تذكير: الطلب رقم %d (معرف الطلب: %s) لم يبدأ تحضيره بعد."
	msgOpUrge     = "استعجال: الزبون ينتظر الطلب رقم %d (معرف الطلب: %s)."
	msgOpHowLong  = "كم تبقى على الطلب رقم %d (معرف الطلب: %s)؟ الرد يكون بعدد الدقائق."
	msgOpCancel   = "ألغى الزبون الطلب رقم %d (معرف الطلب: %s)."
	msgOpReport   = "شكوى: ألغي الطلب رقم %d (معرف الطلب: %s) بعد تجاوز وقت الانتظار."
)

func fmtMoney(m types.Money) string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}

func fmtCart(items []registry.CartItem) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it.Name)
		if it.Size != "" {
			b.WriteString(" (")
			b.WriteString(it.Size)
			b.WriteString(")")
		}
		b.WriteString(" — ")
		b.WriteString(fmtMoney(it.Price))
		b.WriteString("\n")
	}
	return b.String()
}

// fmtOrderNotice builds the structured notification posted to the operator
// channel when an order is confirmed.
func fmtOrderNotice(o *registry.Order, name, phone string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "طلب جديد رقم %d\n", o.SequenceNo)
	fmt.Fprintf(&b, "معرف الطلب: %s\n", o.ID)
	fmt.Fprintf(&b, "الزبون: %s (%s) [%s]\n", name, phone, o.CustomerID)
	b.WriteString(fmtCart(o.Cart))
	if o.Notes != "" {
		fmt.Fprintf(&b, "ملاحظات: %s\n", o.Notes)
	}
	fmt.Fprintf(&b, "المجموع: %s\n", fmtMoney(o.TotalPrice))
	fmt.Fprintf(&b, "العنوان: %s", o.Address)
	return b.String()
}

func fmtOrderSummary(items []registry.CartItem, notes, address string) string {
	var b strings.Builder
	b.WriteString("ملخص الطلب:\n")
	b.WriteString(fmtCart(items))
	if notes != "" {
		fmt.Fprintf(&b, "ملاحظات: %s\n", notes)
	}
	total := types.Money{}
	for _, it := range items {
		total.Amount += it.Price.Amount
		total.Currency = it.Price.Currency
	}
	fmt.Fprintf(&b, "المجموع: %s\n", fmtMoney(total))
	fmt.Fprintf(&b, "العنوان: %s", address)
	return b.String()
}
