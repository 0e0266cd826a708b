package cellular

import (
	"time"

	"github.com/meshguard/sentinel/pkg/model"
)

// RadioTechnology is the raw technology tag reported by the telephony
// adapter for one radio cell (spec.md §6).
type RadioTechnology string

const (
	TechGPRS   RadioTechnology = "GPRS"
	TechEDGE   RadioTechnology = "EDGE"
	TechCDMA   RadioTechnology = "CDMA"
	Tech1xRTT  RadioTechnology = "1xRTT"
	TechIDEN   RadioTechnology = "iDEN"
	TechGSM    RadioTechnology = "GSM"
	TechUMTS   RadioTechnology = "UMTS"
	TechEVDO0  RadioTechnology = "EVDO_0"
	TechEVDOA  RadioTechnology = "EVDO_A"
	TechEVDOB  RadioTechnology = "EVDO_B"
	TechHSDPA  RadioTechnology = "HSDPA"
	TechHSUPA  RadioTechnology = "HSUPA"
	TechHSPA   RadioTechnology = "HSPA"
	TechHSPAP  RadioTechnology = "HSPAP"
	TechEHRPD  RadioTechnology = "EHRPD"
	TechTDSCDMA RadioTechnology = "TD_SCDMA"
	TechLTE    RadioTechnology = "LTE"
	TechIWLAN  RadioTechnology = "IWLAN"
	TechNR     RadioTechnology = "NR"
)

// generationTable maps a raw radio technology to its inferred generation
// (spec.md §6).
var generationTable = map[RadioTechnology]model.NetworkGeneration{
	TechGPRS: model.Gen2G, TechEDGE: model.Gen2G, TechCDMA: model.Gen2G,
	Tech1xRTT: model.Gen2G, TechIDEN: model.Gen2G, TechGSM: model.Gen2G,

	TechUMTS: model.Gen3G, TechEVDO0: model.Gen3G, TechEVDOA: model.Gen3G,
	TechEVDOB: model.Gen3G, TechHSDPA: model.Gen3G, TechHSUPA: model.Gen3G,
	TechHSPA: model.Gen3G, TechHSPAP: model.Gen3G, TechEHRPD: model.Gen3G,
	TechTDSCDMA: model.Gen3G,

	TechLTE: model.Gen4G, TechIWLAN: model.Gen4G,

	TechNR: model.Gen5G,
}

// Generation infers the network generation from a raw technology tag;
// unknown types yield GenUnknown (spec.md §8 quantified invariant).
func Generation(tech RadioTechnology) model.NetworkGeneration {
	if g, ok := generationTable[tech]; ok {
		return g
	}
	return model.GenUnknown
}

// RadioCell is one entry from the telephony adapter's on_cell_info list
// (spec.md §6).
type RadioCell struct {
	Registered bool
	Tech       RadioTechnology
	CI         *int64  // cell identity (LTE/GSM/WCDMA/CDMA)
	NCI        *int64  // NR cell identity (36-bit)
	LAC        *int32
	TAC        *int32
	MCC        *string
	MNC        *string
	SignalDBM  int
}

// SelectServingCell implements the teacher-style selection rule from
// spec.md §6: prefer the first NR-registered cell, else the first
// registered cell.
func SelectServingCell(cells []RadioCell) (RadioCell, bool) {
	for _, c := range cells {
		if c.Registered && c.Tech == TechNR {
			return c, true
		}
	}
	for _, c := range cells {
		if c.Registered {
			return c, true
		}
	}
	return RadioCell{}, false
}

// EffectiveCellID returns the 64-bit identity to use for history/trust
// keying: NCI for NR cells, CI otherwise.
func (c RadioCell) EffectiveCellID() *int64 {
	if c.Tech == TechNR && c.NCI != nil {
		return c.NCI
	}
	return c.CI
}

// DisplayOverride is the UI hint from on_display_override (spec.md §6).
type DisplayOverride string

const (
	DisplayNone             DisplayOverride = "NONE"
	DisplayLTECA            DisplayOverride = "LTE_CA"
	DisplayLTEAdvancedPro   DisplayOverride = "LTE_ADVANCED_PRO"
	DisplayNRNSA            DisplayOverride = "NR_NSA"
	DisplayNRNSAMmWave      DisplayOverride = "NR_NSA_MMWAVE"
	DisplayNRAdvanced       DisplayOverride = "NR_ADVANCED"
)

// EffectiveDisplayGeneration applies the display-override rule: when the
// override signals 5G NSA/advanced and the raw snapshot says LTE, the
// *displayed* generation is 5G, but the underlying anomaly analysis still
// uses the raw snapshot generation (spec.md §6) — callers must pass
// rawGeneration to ScoreIMSICatcher/etc, never the display override.
func EffectiveDisplayGeneration(rawGeneration model.NetworkGeneration, override DisplayOverride) model.NetworkGeneration {
	switch override {
	case DisplayNRNSA, DisplayNRNSAMmWave, DisplayNRAdvanced:
		if rawGeneration == model.Gen4G {
			return model.Gen5G
		}
	}
	return rawGeneration
}

// BuildSnapshot converts a selected RadioCell plus location into the
// immutable CellSnapshot the engine operates on.
func BuildSnapshot(c RadioCell, loc *model.LatLon, timestamp time.Time) model.CellSnapshot {
	return model.CellSnapshot{
		Timestamp:   timestamp,
		CellID:      c.EffectiveCellID(),
		LAC:         c.LAC,
		TAC:         c.TAC,
		MCC:         c.MCC,
		MNC:         c.MNC,
		SignalDBM:   c.SignalDBM,
		NetworkType: string(c.Tech),
		Generation:  Generation(c.Tech),
		Location:    loc,
	}
}
