package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/nihal711/noah/internal/dto"
	"github.com/nihal711/noah/internal/model"
	"github.com/nihal711/noah/internal/repository"
)

func setupTestLetterServices() (BankLetterService, VisaLetterService, *testRepos) {
	repos := newTestRepos()
	repos.addUser("mike", "mike_johnson", model.RoleManager, nil)
	repos.addUser("john", "john_doe", model.RoleEmployee, strPtr("mike"))
	repos.addUser("sarah", "sarah_wilson", model.RoleEmployee, strPtr("mike"))
	repos.addUser("jane", "jane_smith", model.RoleHR, nil)
	return NewBankLetterService(repos.repo, zap.NewNop()), NewVisaLetterService(repos.repo, zap.NewNop()), repos
}

func payslip(content string) dto.CreateAttachmentRequest {
	return dto.CreateAttachmentRequest{
		FileName: "payslip.pdf",
		FileType: "application/pdf",
		FileData: base64.StdEncoding.EncodeToString([]byte(content)),
	}
}

func bankLetter(atts ...dto.CreateAttachmentRequest) *dto.CreateBankLetterRequest {
	return &dto.CreateBankLetterRequest{
		BankName:          "Emirates NBD",
		Purpose:           "Mortgage application",
		AdditionalDetails: strPtr("Salary certificate addressed to the branch manager"),
		Attachments:       atts,
	}
}

// ── bank letters ──

func TestBankLetter_Create_RoundTrip(t *testing.T) {
	bank, _, _ := setupTestLetterServices()
	ctx := context.Background()

	created, err := bank.Create(ctx, johnCaller, bankLetter())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Status != model.StatusPending || created.UserID != "john" {
		t.Errorf("unexpected letter %+v", created)
	}

	got, err := bank.Get(ctx, johnCaller, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.BankName != "Emirates NBD" || got.Purpose != "Mortgage application" {
		t.Errorf("fields not persisted: %+v", got)
	}
	if got.AdditionalDetails == nil || *got.AdditionalDetails != "Salary certificate addressed to the branch manager" {
		t.Errorf("additional_details lost: %v", got.AdditionalDetails)
	}
	if got.Attachments == nil || len(got.Attachments) != 0 {
		t.Errorf("expected an empty attachment list, got %v", got.Attachments)
	}
}

func TestBankLetter_Create_WithAttachments(t *testing.T) {
	bank, _, repos := setupTestLetterServices()

	created, err := bank.Create(context.Background(), johnCaller, bankLetter(payslip("march"), payslip("april")))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(created.Attachments) != 2 {
		t.Fatalf("expected 2 attachments, got %d", len(created.Attachments))
	}
	if created.Attachments[0].FileSize != len("march") || created.Attachments[0].FileData != "" {
		t.Errorf("listing should carry size but not data: %+v", created.Attachments[0])
	}
	if repos.attachments.count() != 2 {
		t.Errorf("expected 2 stored attachments, got %d", repos.attachments.count())
	}
}

func TestBankLetter_Create_BadAttachmentStoresNothing(t *testing.T) {
	bank, _, repos := setupTestLetterServices()
	bad := payslip("x")
	bad.FileData = "%%% not base64"

	_, err := bank.Create(context.Background(), johnCaller, bankLetter(payslip("ok"), bad))
	if !errors.Is(err, ErrAttachmentEncoding) {
		t.Fatalf("expected ErrAttachmentEncoding, got %v", err)
	}
	if repos.banks.count() != 0 || repos.attachments.count() != 0 {
		t.Error("nothing should be stored when an attachment is invalid")
	}
}

func TestBankLetter_Visibility(t *testing.T) {
	bank, _, _ := setupTestLetterServices()
	ctx := context.Background()
	created, _ := bank.Create(ctx, johnCaller, bankLetter())

	if _, err := bank.Get(ctx, janeCaller, created.ID); err != nil {
		t.Errorf("HR should see the letter: %v", err)
	}
	// managers have no letter visibility
	for _, c := range []Caller{sarahCaller, mikeCaller} {
		if _, err := bank.Get(ctx, c, created.ID); !errors.Is(err, ErrBankLetterNotFound) {
			t.Errorf("%s: expected ErrBankLetterNotFound, got %v", c.UserID, err)
		}
	}

	mine, _ := bank.ListMine(ctx, sarahCaller)
	if len(mine) != 0 {
		t.Errorf("sarah has no letters, got %d", len(mine))
	}
	if _, _, err := bank.ListAll(ctx, mikeCaller, &dto.RequestListQuery{}); !errors.Is(err, ErrForbidden) {
		t.Errorf("manager ListAll: expected ErrForbidden, got %v", err)
	}
	all, total, err := bank.ListAll(ctx, janeCaller, &dto.RequestListQuery{})
	if err != nil || total != 1 || len(all) != 1 {
		t.Errorf("HR ListAll: got %d items, err %v", total, err)
	}
}

func TestBankLetter_UpdateStatus(t *testing.T) {
	bank, _, _ := setupTestLetterServices()
	ctx := context.Background()
	created, _ := bank.Create(ctx, johnCaller, bankLetter())

	if _, err := bank.UpdateStatus(ctx, mikeCaller, created.ID, approve()); !errors.Is(err, ErrForbidden) {
		t.Errorf("manager: expected ErrForbidden, got %v", err)
	}

	decided, err := bank.UpdateStatus(ctx, janeCaller, created.ID, &dto.DecisionRequest{
		Status:   model.StatusRejected,
		Comments: strPtr("missing payslip"),
	})
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if decided.Status != model.StatusRejected || decided.ApproverID == nil || *decided.ApproverID != "jane" {
		t.Errorf("unexpected decision %+v", decided)
	}
	if decided.DecidedAt == nil {
		t.Error("decided_at should be set")
	}

	if _, err := bank.UpdateStatus(ctx, janeCaller, created.ID, approve()); !errors.Is(err, ErrLetterNotPending) {
		t.Errorf("second decision: expected ErrLetterNotPending, got %v", err)
	}
	if _, err := bank.UpdateStatus(ctx, janeCaller, "missing", approve()); !errors.Is(err, ErrBankLetterNotFound) {
		t.Errorf("expected ErrBankLetterNotFound, got %v", err)
	}
}

func TestBankLetter_Delete(t *testing.T) {
	bank, _, repos := setupTestLetterServices()
	ctx := context.Background()
	created, _ := bank.Create(ctx, johnCaller, bankLetter(payslip("march")))

	if err := bank.Delete(ctx, sarahCaller, created.ID); !errors.Is(err, ErrBankLetterNotFound) {
		t.Errorf("peer: expected ErrBankLetterNotFound, got %v", err)
	}
	if err := bank.Delete(ctx, johnCaller, created.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if repos.banks.count() != 0 || repos.attachments.count() != 0 {
		t.Error("letter and attachments should be gone")
	}
}

func TestBankLetter_Delete_DecidedOnlyByHR(t *testing.T) {
	bank, _, _ := setupTestLetterServices()
	ctx := context.Background()
	created, _ := bank.Create(ctx, johnCaller, bankLetter())
	if _, err := bank.UpdateStatus(ctx, janeCaller, created.ID, approve()); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if err := bank.Delete(ctx, johnCaller, created.ID); !errors.Is(err, ErrLetterNotPending) {
		t.Errorf("owner: expected ErrLetterNotPending, got %v", err)
	}
	if err := bank.Delete(ctx, janeCaller, created.ID); err != nil {
		t.Errorf("HR delete failed: %v", err)
	}
}

// decideAfterRead approves the letter right after the first plain read,
// standing in for HR deciding between the visibility check and the delete
type decideAfterRead struct {
	repository.RequestRepository[model.BankLetterRequest]
	approver string
	done     bool
}

func (r *decideAfterRead) GetByID(ctx context.Context, id string) (*model.BankLetterRequest, error) {
	letter, err := r.RequestRepository.GetByID(ctx, id)
	if err == nil && !r.done {
		r.done = true
		_, _ = r.Decide(ctx, id, model.Decision{Status: model.StatusApproved, ApproverID: &r.approver})
	}
	return letter, err
}

func TestBankLetter_Delete_RechecksStatusUnderLock(t *testing.T) {
	bank, _, repos := setupTestLetterServices()
	ctx := context.Background()
	created, _ := bank.Create(ctx, johnCaller, bankLetter(payslip("march")))

	repos.repo.BankLetter = &decideAfterRead{RequestRepository: repos.banks, approver: "jane"}

	if err := bank.Delete(ctx, johnCaller, created.ID); !errors.Is(err, ErrLetterNotPending) {
		t.Fatalf("expected ErrLetterNotPending, got %v", err)
	}
	if repos.banks.count() != 1 || repos.attachments.count() != 1 {
		t.Error("approved letter and its attachment must survive")
	}
}

// ── attachments ──

func TestLetterAttachments(t *testing.T) {
	bank, _, _ := setupTestLetterServices()
	ctx := context.Background()
	created, _ := bank.Create(ctx, johnCaller, bankLetter())
	up := AttachmentUpload{FileName: "id.png", FileType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}

	if _, err := bank.AddAttachment(ctx, janeCaller, created.ID, up); !errors.Is(err, ErrBankLetterNotFound) {
		t.Errorf("non-owner: expected ErrBankLetterNotFound, got %v", err)
	}

	added, err := bank.AddAttachment(ctx, johnCaller, created.ID, up)
	if err != nil {
		t.Fatalf("AddAttachment failed: %v", err)
	}
	if added.OwnerType != model.OwnerBankLetter || added.OwnerID != created.ID || added.FileSize != 4 {
		t.Errorf("unexpected attachment %+v", added)
	}

	list, err := bank.ListAttachments(ctx, janeCaller, created.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListAttachments: %d items, err %v", len(list), err)
	}

	got, err := bank.GetAttachment(ctx, johnCaller, created.ID, added.ID)
	if err != nil {
		t.Fatalf("GetAttachment failed: %v", err)
	}
	data, _ := base64.StdEncoding.DecodeString(got.FileData)
	if string(data) != "\x89PNG" {
		t.Errorf("payload mismatch: %q", data)
	}

	if _, err := bank.GetAttachment(ctx, johnCaller, created.ID, "att-missing"); !errors.Is(err, ErrAttachmentNotFound) {
		t.Errorf("expected ErrAttachmentNotFound, got %v", err)
	}
	if _, err := bank.GetAttachment(ctx, sarahCaller, created.ID, added.ID); !errors.Is(err, ErrBankLetterNotFound) {
		t.Errorf("peer: expected ErrBankLetterNotFound, got %v", err)
	}
}

func TestAttachmentUpload_Limits(t *testing.T) {
	bank, _, _ := setupTestLetterServices()
	ctx := context.Background()
	created, _ := bank.Create(ctx, johnCaller, bankLetter())

	empty := AttachmentUpload{FileName: "a", FileType: "text/plain"}
	if _, err := bank.AddAttachment(ctx, johnCaller, created.ID, empty); !errors.Is(err, ErrAttachmentEmpty) {
		t.Errorf("expected ErrAttachmentEmpty, got %v", err)
	}

	big := AttachmentUpload{FileName: "a", FileType: "text/plain", Data: []byte(strings.Repeat("x", MaxAttachmentBytes+1))}
	if _, err := bank.AddAttachment(ctx, johnCaller, created.ID, big); !errors.Is(err, ErrAttachmentTooLarge) {
		t.Errorf("expected ErrAttachmentTooLarge, got %v", err)
	}
}

// ── visa letters ──

func TestVisaLetter_DefaultsAndScope(t *testing.T) {
	bank, visa, repos := setupTestLetterServices()
	ctx := context.Background()

	created, err := visa.Create(ctx, johnCaller, &dto.CreateVisaLetterRequest{
		Type:        "Tourist",
		AddressedTo: "Embassy of France",
		Country:     "France",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Language != "English" {
		t.Errorf("language should default to English, got %q", created.Language)
	}

	// ids of one letter kind do not resolve as the other
	if _, err := bank.Get(ctx, johnCaller, created.ID); !errors.Is(err, ErrBankLetterNotFound) {
		t.Errorf("expected ErrBankLetterNotFound, got %v", err)
	}
	if _, err := visa.Get(ctx, johnCaller, created.ID); err != nil {
		t.Errorf("Get failed: %v", err)
	}

	if err := visa.Delete(ctx, johnCaller, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if repos.visas.count() != 0 {
		t.Error("visa letter should be gone")
	}
}
