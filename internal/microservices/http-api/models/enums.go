package models

// Enumerations are persisted as their literal labels.

type Format string

const (
	FormatBluRay  Format = "Blu-ray"
	FormatDVD     Format = "DVD"
	FormatUltraHD Format = "Ultra HD"
	FormatUV      Format = "UV"
	FormatDigital Format = "Digital"
)

var Formats = []Format{FormatBluRay, FormatDVD, FormatUltraHD, FormatUV, FormatDigital}

func (f Format) Valid() bool {
	for _, v := range Formats {
		if f == v {
			return true
		}
	}
	return false
}

// YesNo backs the boolean-ish Is3D and Watched columns.
type YesNo string

const (
	Yes YesNo = "Y"
	No  YesNo = "N"
)

func (y YesNo) Valid() bool {
	return y == Yes || y == No
}

// DigitalType records which digital redemption came with the item.
type DigitalType string

const (
	DigitalNone        DigitalType = "None"
	DigitalCopy        DigitalType = "DC"
	DigitalUltraviolet DigitalType = "UV"
	DigitalCopyAndUV   DigitalType = "DC+UV"
)

var DigitalTypes = []DigitalType{DigitalNone, DigitalCopy, DigitalUltraviolet, DigitalCopyAndUV}

func (d DigitalType) Valid() bool {
	for _, v := range DigitalTypes {
		if d == v {
			return true
		}
	}
	return false
}

type CaseType string

const (
	CasePlain     CaseType = "Plain"
	CaseBox       CaseType = "Box"
	CaseDigibook  CaseType = "Digibook"
	CaseSlipcover CaseType = "Slipcover"
	CaseSteelbook CaseType = "Steelbook"
)

var CaseTypes = []CaseType{CasePlain, CaseBox, CaseDigibook, CaseSlipcover, CaseSteelbook}

func (c CaseType) Valid() bool {
	for _, v := range CaseTypes {
		if c == v {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusOwned   Status = "Owned"
	StatusWanted  Status = "Wanted"
	StatusSelling Status = "Selling"
	StatusWaiting Status = "Waiting"
)

var Statuses = []Status{StatusOwned, StatusWanted, StatusSelling, StatusWaiting}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}
