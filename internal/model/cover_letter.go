package model

type CoverLetter struct {
	Subject string `json:"subject"`
	Letter  string `json:"letter"`
}

func DecodeCoverLetter(raw []byte) (*CoverLetter, error) {
	m, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	setDefault(m, "subject", "")
	if err := ValidateMap("cover_letter", m); err != nil {
		return nil, err
	}

	var out CoverLetter
	if err := remarshal(m, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
