package signals

const (
	TriggerOn  = "ON"
	TriggerOff = "OFF"

	defaultTriggerReason = "NONE"
)

var triggerReasons = map[string]string{
	"T_1":  "EMA戻り",
	"T_2":  "RSI極値",
	"T_3":  "RSI戻り",
	"NONE": "なし",
	"None": "なし",
}

// TriggerReasonText maps a reason code to its label. Unknown codes pass through.
func TriggerReasonText(code string) string {
	if text, ok := triggerReasons[code]; ok {
		return text
	}
	return code
}

// FormatTrigger renders the trigger cell.
func FormatTrigger(trigger, reason string) string {
	switch trigger {
	case TriggerOff:
		return TriggerOff
	case TriggerOn:
		return TriggerOn + " | " + TriggerReasonText(reason)
	}
	return trigger
}

func TriggerClass(trigger string) string {
	if trigger == TriggerOn {
		return "trigger-on"
	}
	return "trigger-off"
}
