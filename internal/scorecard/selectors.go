package scorecard

// Page regions of the score source. Kept together so a markup change on the
// source is a one-file edit.
const (
	selScoreWrapper = "div.cb-scrs-wrp"
	selMatchHeader  = "h1.cb-nav-hdr"
	selSeriesLink   = "div.cb-nav-subhdr a[href*='/cricket-series/']"

	selCompletedTeam = "div.cb-min-tm"
	selPreviousTeam  = "div.cb-text-gray.cb-font-16"
	selBattingTeam   = "span.cb-font-20.text-bold"

	selRunRate = "span.cb-font-12.cb-text-gray"

	selStatus = "div.cb-text-inprogress, div.cb-text-complete, div.cb-text-inningsbreak, " +
		"div.cb-text-stumps, div.cb-text-lunch, div.cb-text-tea, div.cb-text-rain, div.cb-text-preview"
	selComplete = "div.cb-text-complete"

	selBatterPanel  = "div.cb-min-inf"
	selPlayerName   = "div.cb-col-50"
	selPlayerNumber = "div.cb-min-itm-rw div.cb-col-10"

	selCommentary    = "div.cb-com-ln"
	classHasOver     = "cb-col-90"
	selOverNumber    = "div.cb-ovr-num"
	selKeyStatLabel  = "div.cb-key-st-lst div.cb-min-itm-rw span.text-bold"
	selKeyStatValue  = "div.cb-key-st-lst div.cb-min-itm-rw span.text-bold + span"
	selListingCard   = "div.cb-mtch-lst"
	selListingLink   = "a.text-hvr-underline"
	headerNameSuffix = " - "
)
