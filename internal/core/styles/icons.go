package styles

var (
	IconPass    = "✔" // ✔
	IconWarn    = "!"
	IconFail    = "✘" // ✘
	IconArrow   = "→" // →
	IconComment = "\U000F0188"
)
