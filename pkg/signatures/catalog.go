// Package signatures holds the process-wide, read-only tables of known
// network identities and known ultrasonic beacon signatures (spec.md §4.1).
package signatures

import "strconv"

// Modulation is the expected ultrasonic modulation scheme for a signature.
type Modulation string

const (
	ModFSK     Modulation = "FSK"
	ModPSK     Modulation = "PSK"
	ModCHIRP   Modulation = "CHIRP"
	ModSTEADY  Modulation = "STEADY"
	ModUnknown Modulation = "UNKNOWN"
)

// Purpose tags the business reason a known ultrasonic beacon exists.
type Purpose string

const (
	PurposeAdTracking         Purpose = "AdTracking"
	PurposeTvAttribution      Purpose = "TvAttribution"
	PurposeCrossDeviceLinking Purpose = "CrossDeviceLinking"
	PurposeRetailAnalytics    Purpose = "RetailAnalytics"
	PurposeLocationVerify     Purpose = "LocationVerification"
	PurposePresenceDetection  Purpose = "PresenceDetection"
	PurposeTvViewershipACR    Purpose = "TvViewershipACR"
	PurposeOther              Purpose = "Other"
)

// UltrasonicSignature is one entry in the known-beacon table.
type UltrasonicSignature struct {
	CenterFreqHz       float64
	Vendor             string
	Purpose            Purpose
	ExpectedModulation Modulation
	ConfirmationText   string
	MitigationText     string
}

// ultrasonicTable is the static catalog of known ultrasonic tracking and
// ACR beacons. Frequencies reflect publicly documented ultrasonic cross-
// device tracking and ACR products (SilverPush, Lisnr, Shopkick-class
// retail beacons, and smart-TV ACR watermarking).
var ultrasonicTable = []UltrasonicSignature{
	{
		CenterFreqHz:       18000,
		Vendor:             "SilverPush",
		Purpose:            PurposeAdTracking,
		ExpectedModulation: ModFSK,
		ConfirmationText:   "Tone matches the SilverPush ultrasonic ad-tracking beacon.",
		MitigationText:     "Mute or disable the microphone for apps that do not need it; SilverPush-style SDKs listen passively in the background.",
	},
	{
		CenterFreqHz:       19000,
		Vendor:             "Lisnr",
		Purpose:            PurposeCrossDeviceLinking,
		ExpectedModulation: ModFSK,
		ConfirmationText:   "Tone matches the Lisnr cross-device linking beacon.",
		MitigationText:     "Disable microphone permissions for retail and shopping apps when not actively in use.",
	},
	{
		CenterFreqHz:       20100,
		Vendor:             "Generic TV ACR",
		Purpose:            PurposeTvViewershipACR,
		ExpectedModulation: ModCHIRP,
		ConfirmationText:   "Tone matches an automatic-content-recognition watermark embedded in broadcast audio.",
		MitigationText:     "This is usually benign TV-viewership attribution; no device action required unless it persists away from a TV.",
	},
	{
		CenterFreqHz:       21200,
		Vendor:             "Alphonso",
		Purpose:            PurposeTvAttribution,
		ExpectedModulation: ModSTEADY,
		ConfirmationText:   "Tone matches an Alphonso-style TV content attribution watermark.",
		MitigationText:     "Check installed apps for media-attribution SDKs and revoke microphone access.",
	},
	{
		CenterFreqHz:       20000,
		Vendor:             "Shopkick-class retail beacon",
		Purpose:            PurposeRetailAnalytics,
		ExpectedModulation: ModPSK,
		ConfirmationText:   "Tone matches a retail in-store presence/analytics beacon.",
		MitigationText:     "Expected in some retail locations; revoke microphone permission from shopping apps if unwanted.",
	},
	{
		CenterFreqHz:       17800,
		Vendor:             "Generic presence beacon",
		Purpose:            PurposePresenceDetection,
		ExpectedModulation: ModSTEADY,
		ConfirmationText:   "Tone matches a generic ultrasonic presence-detection beacon.",
		MitigationText:     "Check nearby smart displays or kiosks; no personal device action usually required.",
	},
}

// UltrasonicSignatures returns the full known-beacon table.
func UltrasonicSignatures() []UltrasonicSignature {
	out := make([]UltrasonicSignature, len(ultrasonicTable))
	copy(out, ultrasonicTable)
	return out
}

// FindUltrasonic returns the catalog entry whose center frequency is within
// toleranceHz of freqHz, if any.
func FindUltrasonic(freqHz, toleranceHz float64) (UltrasonicSignature, bool) {
	best := UltrasonicSignature{}
	bestDelta := toleranceHz + 1
	found := false
	for _, sig := range ultrasonicTable {
		delta := sig.CenterFreqHz - freqHz
		if delta < 0 {
			delta = -delta
		}
		if delta <= toleranceHz && delta < bestDelta {
			best = sig
			bestDelta = delta
			found = true
		}
	}
	return best, found
}

// IsSuspiciousMCCMNC reports whether mcc/mnc falls in an ITU test or
// reserved range known to be abused by rogue base stations (spec.md §4.1).
func IsSuspiciousMCCMNC(mcc, mnc string) bool {
	switch mcc {
	case "001", "999", "000":
		return true
	case "002":
		return mnc == "01" || mnc == "02"
	case "901":
		n, err := strconv.Atoi(mnc)
		return err == nil && n >= 1 && n <= 18
	}
	return false
}

// usCarrierMNC is the recognized-operator set for MCC 310/311 (US).
var usCarrierMNC = map[string]map[string]bool{
	"310": {
		"004": true, "005": true, "006": true, "010": true, "012": true,
		"013": true, "020": true, "030": true, "038": true, "090": true,
		"120": true, "150": true, "160": true, "170": true, "180": true,
		"190": true, "200": true, "210": true, "220": true, "230": true,
		"240": true, "250": true, "260": true, "270": true, "280": true,
		"290": true, "311": true, "410": true, "560": true, "580": true,
		"680": true, "770": true, "800": true,
	},
	"311": {
		"270": true, "271": true, "272": true, "273": true, "274": true,
		"275": true, "276": true, "277": true, "278": true, "279": true,
		"280": true, "281": true, "282": true, "283": true, "284": true,
		"285": true, "286": true, "287": true, "288": true, "289": true,
		"480": true, "481": true, "482": true, "483": true, "484": true,
		"485": true, "486": true, "487": true, "488": true, "489": true,
		"490": true,
	},
}

// IsKnownUSCarrierMNC reports whether mnc is a recognized carrier MNC for
// US MCCs 310/311.
func IsKnownUSCarrierMNC(mcc, mnc string) bool {
	set, ok := usCarrierMNC[mcc]
	if !ok {
		return false
	}
	return set[mnc]
}

// SuspiciousLAC reports whether lac falls in the StingRay-typical low range.
func SuspiciousLAC(lac int32) bool { return lac >= 0 && lac <= 10 }

// SuspiciousTAC reports whether tac falls in the StingRay-typical low range.
func SuspiciousTAC(tac int32) bool { return tac >= 0 && tac <= 5 }

// IsSuspiciousCellIDPattern flags cell IDs whose shape is characteristic of
// a simulator's default/test configuration rather than a real deployed
// cell (spec.md §4.1).
func IsSuspiciousCellIDPattern(id int64) bool {
	if id >= 1 && id <= 100 {
		return true
	}
	if id%10000 == 0 {
		return true
	}
	if id%1000 == 0 && id < 100000 {
		return true
	}
	s := strconv.FormatInt(id, 10)
	if len(s) >= 4 && allSameDigit(s) {
		return true
	}
	if len(s) >= 5 && (isAscendingDigits(s) || isDescendingDigits(s)) {
		return true
	}
	return false
}

func allSameDigit(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

func isAscendingDigits(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[i-1]+1 {
			return false
		}
	}
	return true
}

func isDescendingDigits(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[i-1]-1 {
			return false
		}
	}
	return true
}
