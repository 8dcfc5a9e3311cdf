package invoice

import (
	"testing"

	"github.com/hitoshi/billman/internal/model"
)

func TestForm_Validate_AllFieldsValid(t *testing.T) {
	form := Form{CustomerID: "c1", Amount: "25.5", Status: "pending"}

	fields, fieldErrors := form.Validate()
	if fieldErrors != nil {
		t.Fatalf("expected no field errors, got %v", fieldErrors)
	}
	if fields.CustomerID != "c1" {
		t.Errorf("CustomerID = %q, want %q", fields.CustomerID, "c1")
	}
	if fields.AmountCents != 2550 {
		t.Errorf("AmountCents = %d, want %d", fields.AmountCents, 2550)
	}
	if fields.Status != model.InvoiceStatusPending {
		t.Errorf("Status = %q, want %q", fields.Status, model.InvoiceStatusPending)
	}
}

// customerId欠落時にcustomerIdのフィールドエラーが返ることを検証
func TestForm_Validate_MissingCustomerID(t *testing.T) {
	form := Form{CustomerID: "", Amount: "50", Status: "pending"}

	fields, fieldErrors := form.Validate()
	if fields != nil {
		t.Fatal("expected nil fields on validation failure")
	}
	if len(fieldErrors["customerId"]) == 0 {
		t.Fatal("expected customerId field error")
	}
	if fieldErrors["customerId"][0] != "Please select a customer." {
		t.Errorf("customerId error = %q, want %q", fieldErrors["customerId"][0], "Please select a customer.")
	}
	// 他のフィールドは正常なのでエラーが付かないこと
	if len(fieldErrors["amount"]) != 0 || len(fieldErrors["status"]) != 0 {
		t.Errorf("unexpected extra field errors: %v", fieldErrors)
	}
}

// 空白のみのcustomerIdも欠落扱いになることを検証
func TestForm_Validate_WhitespaceCustomerID(t *testing.T) {
	form := Form{CustomerID: "   ", Amount: "50", Status: "pending"}

	_, fieldErrors := form.Validate()
	if len(fieldErrors["customerId"]) == 0 {
		t.Error("whitespace-only customerId should fail validation")
	}
}

func TestForm_Validate_AmountRules(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr bool
		cents   int64
	}{
		{"positive decimal", "12.34", false, 1234},
		{"integer", "50", false, 5000},
		{"sub-cent rounds", "10.005", false, 1001},
		{"zero", "0", true, 0},
		{"negative", "-5", true, 0},
		{"non-numeric", "abc", true, 0},
		{"empty", "", true, 0},
		{"whitespace", "  ", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := Form{CustomerID: "c1", Amount: tt.amount, Status: "paid"}
			fields, fieldErrors := form.Validate()

			if tt.wantErr {
				if len(fieldErrors["amount"]) == 0 {
					t.Fatalf("amount %q should fail validation", tt.amount)
				}
				if fieldErrors["amount"][0] != "Please enter an amount greater than $0." {
					t.Errorf("amount error = %q, want %q", fieldErrors["amount"][0], "Please enter an amount greater than $0.")
				}
				return
			}

			if fieldErrors != nil {
				t.Fatalf("amount %q should pass validation, got %v", tt.amount, fieldErrors)
			}
			if fields.AmountCents != tt.cents {
				t.Errorf("AmountCents = %d, want %d", fields.AmountCents, tt.cents)
			}
		})
	}
}

// 12.34 が正確に 1234 セントになることを検証（浮動小数点誤差なし）
func TestForm_Validate_AmountExactCents(t *testing.T) {
	form := Form{CustomerID: "c1", Amount: "12.34", Status: "paid"}

	fields, fieldErrors := form.Validate()
	if fieldErrors != nil {
		t.Fatalf("unexpected field errors: %v", fieldErrors)
	}
	if fields.AmountCents != 1234 {
		t.Errorf("AmountCents = %d, want exactly 1234", fields.AmountCents)
	}
}

func TestForm_Validate_StatusRules(t *testing.T) {
	tests := []struct {
		status  string
		wantErr bool
	}{
		{"pending", false},
		{"paid", false},
		{"", true},
		{"overdue", true},
		{"PAID", true},
	}

	for _, tt := range tests {
		t.Run("status_"+tt.status, func(t *testing.T) {
			form := Form{CustomerID: "c1", Amount: "10", Status: tt.status}
			_, fieldErrors := form.Validate()

			if tt.wantErr {
				if len(fieldErrors["status"]) == 0 {
					t.Fatalf("status %q should fail validation", tt.status)
				}
				if fieldErrors["status"][0] != "Please select an invoice status." {
					t.Errorf("status error = %q, want %q", fieldErrors["status"][0], "Please select an invoice status.")
				}
				return
			}
			if len(fieldErrors["status"]) != 0 {
				t.Errorf("status %q should pass validation, got %v", tt.status, fieldErrors["status"])
			}
		})
	}
}

// 複数フィールドが不正な場合、最初のエラーだけでなく全エラーが蓄積されることを検証
func TestForm_Validate_AccumulatesAllFieldErrors(t *testing.T) {
	form := Form{CustomerID: "", Amount: "-1", Status: "bogus"}

	fields, fieldErrors := form.Validate()
	if fields != nil {
		t.Fatal("expected nil fields")
	}
	for _, field := range []string{"customerId", "amount", "status"} {
		if len(fieldErrors[field]) == 0 {
			t.Errorf("expected %s field error to be accumulated", field)
		}
	}
}
