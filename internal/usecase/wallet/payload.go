package wallet

// Save-to-wallet claim set and generic-object payload. The token is encoded
// unsigned; production issuing would sign it with the issuer key.

type saveClaims struct {
	Issuer   string      `json:"iss"`
	Audience string      `json:"aud"`
	Type     string      `json:"typ"`
	IssuedAt int64       `json:"iat"`
	Payload  savePayload `json:"payload"`
}

type savePayload struct {
	GenericObjects []genericObject `json:"genericObjects"`
}

type genericObject struct {
	ID                 string        `json:"id"`
	ClassID            string        `json:"classId"`
	State              string        `json:"state"`
	HeaderObject       headerObject  `json:"headerObject"`
	TextObjects        []textObject  `json:"textObjectsV2"`
	HexBackgroundColor string        `json:"hexBackgroundColor"`
	Logo               *logo         `json:"logo,omitempty"`
	GroupingInfo       groupingInfo  `json:"groupingInfo"`
	Barcode            *barcode      `json:"barcode,omitempty"`
	ValidTimeInterval  *timeInterval `json:"validTimeInterval,omitempty"`
}

type headerObject struct {
	Header    string `json:"header"`
	SubHeader string `json:"subHeader"`
}

type textObject struct {
	Header string `json:"header"`
	Body   string `json:"body"`
}

type groupingInfo struct {
	GroupingID string `json:"groupingId"`
	SortIndex  int64  `json:"sortIndex"`
}

type barcode struct {
	Type          string `json:"type"`
	Value         string `json:"value"`
	AlternateText string `json:"alternateText"`
}

type timeInterval struct {
	Start intervalDate `json:"start"`
	End   intervalDate `json:"end"`
}

type intervalDate struct {
	Date string `json:"date"`
}

type logo struct {
	SourceURI sourceURI `json:"sourceUri"`
}

type sourceURI struct {
	URI string `json:"uri"`
}
