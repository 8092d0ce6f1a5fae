package utils

import "testing"

type sampleRequest struct {
	Email   string        `json:"email" validate:"required,email"`
	Name    string        `json:"name" validate:"required,min=2,max=50"`
	Rating  int           `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Address sampleAddress `json:"address"`
}

type sampleAddress struct {
	Pincode string `json:"pincode" validate:"omitempty,len=6,numeric"`
}

func TestValidateStructCollectsAllErrors(t *testing.T) {
	req := sampleRequest{
		Email:   "not-an-email",
		Name:    "x",
		Rating:  9,
		Address: sampleAddress{Pincode: "12ab"},
	}
	errs := ValidateStruct(req)
	if len(errs) != 4 {
		t.Fatalf("expected 4 errors, got %d: %v", len(errs), errs)
	}

	byParam := map[string]string{}
	for _, e := range errs {
		byParam[e.Param] = e.Msg
	}
	if _, ok := byParam["email"]; !ok {
		t.Errorf("missing email error: %v", byParam)
	}
	if _, ok := byParam["name"]; !ok {
		t.Errorf("missing name error: %v", byParam)
	}
	if _, ok := byParam["rating"]; !ok {
		t.Errorf("missing rating error: %v", byParam)
	}
	// Nested fields report the json path, not the Go namespace.
	if _, ok := byParam["address.pincode"]; !ok {
		t.Errorf("missing address.pincode error: %v", byParam)
	}
}

func TestValidateStructPassesValidInput(t *testing.T) {
	req := sampleRequest{
		Email:   "store@example.com",
		Name:    "City Medical",
		Rating:  4,
		Address: sampleAddress{Pincode: "452001"},
	}
	if errs := ValidateStruct(req); errs != nil {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestValidateStructMessages(t *testing.T) {
	errs := ValidateStruct(sampleRequest{})
	if len(errs) == 0 {
		t.Fatal("expected errors for empty request")
	}
	for _, e := range errs {
		if e.Msg == "" {
			t.Errorf("empty message for %s", e.Param)
		}
	}
}
