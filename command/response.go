package command

import "encoding/json"

// Response is the flat wire record answering one request.  Pointer fields
// serialize even when false or zero; value fields with omitempty only
// appear for the verbs that set them.
type Response struct {
	Status string `json:"status,omitempty"`
	Tree   int    `json:"tree,omitempty"`
	Pump   string `json:"pump,omitempty"`
	State  *bool  `json:"state,omitempty"`
	Run    *bool  `json:"run,omitempty"`
	Soil   []int  `json:"soil,omitempty"`
	PWater *bool  `json:"pWater,omitempty"`
	PFert  *bool  `json:"pFert,omitempty"`
	StepsX *int   `json:"stepsX,omitempty"`
	StepsY *int   `json:"stepsY,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Marshal renders the response as one JSON line, without the terminator.
func (r Response) Marshal() []byte {
	// the type marshals from plain fields, this cannot fail
	b, _ := json.Marshal(r)
	return b
}

// errResponse wraps an error into a response record.
func errResponse(err error) Response {
	return Response{Error: err.Error()}
}

func boolp(b bool) *bool { return &b }
func intp(i int) *int    { return &i }
