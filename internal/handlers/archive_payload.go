package handlers

import (
	"net/http"

	"github.com/hondurasarchive/backend/internal/models"
)

// NameList decodes the names field from a JSON array (of strings or legacy name objects)
// or from a single comma-separated string
type NameList []string

// UnmarshalJSON implements json.Unmarshaler
func (n *NameList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = nil
		return nil
	}
	names := models.ParseNames(string(data))
	if names == nil {
		names = []string{}
	}
	*n = names
	return nil
}

// recordPayload is the wire shape of a record write, legacy aliases included
type recordPayload struct {
	Names             NameList `json:"names"`
	FullName          NameList `json:"fullName"`
	Category          *string  `json:"category"`
	EventDate         *string  `json:"eventDate"`
	DateOfPublication *string  `json:"dateOfPublication"`
	Date              *string  `json:"date"`
	Location          *string  `json:"location"`
	EventLocation     *string  `json:"eventLocation"`
	BirthOrigin       *string  `json:"birthOrigin"`
	CountryOfOrigin   *string  `json:"countryOfOrigin"`
	NewspaperName     *string  `json:"newspaperName"`
	PageNumber        *string  `json:"pageNumber"`
	Transcription     *string  `json:"transcription"`
	Summary           *string  `json:"summary"`
	Description       *string  `json:"description"`
	FamilySearchID    *string  `json:"familySearchId"`
}

// payloadFromForm reads a record write from a parsed form body
func payloadFromForm(r *http.Request) *recordPayload {
	p := &recordPayload{
		Category:          formValue(r, "category"),
		EventDate:         formValue(r, "eventDate"),
		DateOfPublication: formValue(r, "dateOfPublication"),
		Date:              formValue(r, "date"),
		Location:          formValue(r, "location"),
		EventLocation:     formValue(r, "eventLocation"),
		BirthOrigin:       formValue(r, "birthOrigin"),
		CountryOfOrigin:   formValue(r, "countryOfOrigin"),
		NewspaperName:     formValue(r, "newspaperName"),
		PageNumber:        formValue(r, "pageNumber"),
		Transcription:     formValue(r, "transcription"),
		Summary:           formValue(r, "summary"),
		Description:       formValue(r, "description"),
		FamilySearchID:    formValue(r, "familySearchId"),
	}
	if names := formValue(r, "names", "fullName"); names != nil {
		p.Names = formNames(*names)
	}
	return p
}

func formNames(raw string) NameList {
	names := models.ParseNames(raw)
	if names == nil {
		names = []string{}
	}
	return names
}

func firstOf(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func (p *recordPayload) names() []string {
	if p.Names != nil {
		return p.Names
	}
	return p.FullName
}

// createRequest converts the payload into a create request, absent fields become empty
func (p *recordPayload) createRequest() *models.CreateRecordRequest {
	return &models.CreateRecordRequest{
		Names:           p.names(),
		Category:        valueOrEmpty(p.Category),
		EventDate:       valueOrEmpty(firstOf(p.EventDate, p.DateOfPublication, p.Date)),
		Location:        valueOrEmpty(firstOf(p.Location, p.EventLocation)),
		BirthOrigin:     valueOrEmpty(p.BirthOrigin),
		CountryOfOrigin: valueOrEmpty(p.CountryOfOrigin),
		NewspaperName:   valueOrEmpty(p.NewspaperName),
		PageNumber:      valueOrEmpty(p.PageNumber),
		Transcription:   valueOrEmpty(firstOf(p.Transcription, p.Summary, p.Description)),
		FamilySearchID:  valueOrEmpty(p.FamilySearchID),
	}
}

// updateRequest converts the payload into a partial update, absent fields stay nil
func (p *recordPayload) updateRequest() *models.UpdateRecordRequest {
	return &models.UpdateRecordRequest{
		Names:           p.names(),
		Category:        p.Category,
		EventDate:       firstOf(p.EventDate, p.DateOfPublication, p.Date),
		Location:        firstOf(p.Location, p.EventLocation),
		BirthOrigin:     p.BirthOrigin,
		CountryOfOrigin: p.CountryOfOrigin,
		NewspaperName:   p.NewspaperName,
		PageNumber:      p.PageNumber,
		Transcription:   firstOf(p.Transcription, p.Summary, p.Description),
		FamilySearchID:  p.FamilySearchID,
	}
}
