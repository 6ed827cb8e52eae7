// README: Decoder tests over realistic operator phrasings.
package channel

import "testing"

const sampleID = "Ab3dEf7hIj9kLm2"

func TestDecodeRejection(t *testing.T) {
	for _, text := range []string{
		"تم رفض الطلب، معرف الطلب: " + sampleID,
		"مرفوض " + sampleID,
		"نرفض الطلب رقم الطلب: " + sampleID + " لعدم توفر المواد",
	} {
		ev, ok := Decode(text).(OrderRejected)
		if !ok {
			t.Fatalf("Decode(%q) = %T, want OrderRejected", text, Decode(text))
		}
		if string(ev.OrderID) != sampleID {
			t.Fatalf("Decode(%q) id = %s", text, ev.OrderID)
		}
	}
}

func TestDecodePreparationStarted(t *testing.T) {
	for _, text := range []string{
		"جاري التحضير معرف الطلب: " + sampleID,
		"بدأ التحضير " + sampleID,
		"الطلب " + sampleID + " قيد التحضير",
	} {
		ev, ok := Decode(text).(PreparationStarted)
		if !ok {
			t.Fatalf("Decode(%q) = %T, want PreparationStarted", text, Decode(text))
		}
		if string(ev.OrderID) != sampleID {
			t.Fatalf("Decode(%q) id = %s", text, ev.OrderID)
		}
	}
}

func TestDecodeComplaintWithReason(t *testing.T) {
	text := "إلغاء بشكوى معرف الطلب: " + sampleID + " السبب: تأخر التوصيل أكثر من ساعة"
	ev, ok := Decode(text).(ComplaintCancelled)
	if !ok {
		t.Fatalf("Decode = %T, want ComplaintCancelled", Decode(text))
	}
	if string(ev.OrderID) != sampleID {
		t.Fatalf("id = %s", ev.OrderID)
	}
	if ev.Reason != "تأخر التوصيل أكثر من ساعة" {
		t.Fatalf("reason = %q", ev.Reason)
	}
}

func TestDecodeComplaintWithoutReason(t *testing.T) {
	ev, ok := Decode("شكوى على الطلب " + sampleID).(ComplaintCancelled)
	if !ok {
		t.Fatal("want ComplaintCancelled")
	}
	if ev.Reason != "" {
		t.Fatalf("reason = %q, want empty", ev.Reason)
	}
}

// TestDecodePriority: a text matching both rejection and preparation markers
// must classify as a rejection.
func TestDecodePriority(t *testing.T) {
	text := "تم رفض الطلب بعد أن كان قيد التحضير، معرف الطلب: " + sampleID
	if _, ok := Decode(text).(OrderRejected); !ok {
		t.Fatalf("Decode = %T, want OrderRejected", Decode(text))
	}
}

func TestDecodeGenericWithBareID(t *testing.T) {
	text := "الطلب " + sampleID + " سيتأخر قليلاً بسبب الزحام"
	ev, ok := Decode(text).(GenericStatusUpdate)
	if !ok {
		t.Fatalf("Decode = %T, want GenericStatusUpdate", Decode(text))
	}
	if string(ev.OrderID) != sampleID {
		t.Fatalf("id = %s", ev.OrderID)
	}
}

func TestDecodeUnrecognized(t *testing.T) {
	for _, text := range []string{
		"",
		"صباح الخير جميعاً",
		"تم رفض الطلب",                      // marker but no id
		"الطلب Ab3dEf7hIj9k جاهز",           // 12 chars, too short
		"الطلب Ab3dEf7hIj9kLm2Xy45 وصل",     // 19 chars, too long
	} {
		if _, ok := Decode(text).(Unrecognized); !ok {
			t.Fatalf("Decode(%q) = %T, want Unrecognized", text, Decode(text))
		}
	}
}

func TestLabelledIDWinsOverBareToken(t *testing.T) {
	other := "Zz9Yy8Xx7Ww6Vv5"
	text := other + " تم رفض الطلب معرف الطلب: " + sampleID
	ev, ok := Decode(text).(OrderRejected)
	if !ok {
		t.Fatalf("Decode = %T, want OrderRejected", Decode(text))
	}
	if string(ev.OrderID) != sampleID {
		t.Fatalf("id = %s, want the labelled one", ev.OrderID)
	}
}

func TestParseRemainingMinutes(t *testing.T) {
	cases := []struct {
		text string
		want int
		ok   bool
	}{
		{"20", 20, true},
		{" 0 ", 0, true},
		{"150", 150, true},
		{"151", 0, false},
		{"999", 0, false},
		{"20 دقيقة", 0, false},
		{"عشرون", 0, false},
		{"", 0, false},
		{"-5", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseRemainingMinutes(c.text)
		if ok != c.ok || got != c.want {
			t.Fatalf("ParseRemainingMinutes(%q) = (%d, %v), want (%d, %v)", c.text, got, ok, c.want, c.ok)
		}
	}
}
