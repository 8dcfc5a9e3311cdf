package invoice

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/billman/internal/model"
	"github.com/hitoshi/billman/internal/repository"
)

// InvoicesPath は請求書一覧ページのルートパス。
// ミューテーション成功時のキャッシュ破棄とリダイレクト先に使用する。
const InvoicesPath = "/dashboard/invoices"

// ミューテーションのユーザー向けメッセージ
const (
	msgMissingFieldsCreate = "Missing Fields. Failed to Create Invoice."
	msgMissingFieldsUpdate = "Missing Fields. Failed to Update Invoice."
	msgDBErrorCreate       = "Database Error: Failed to Create Invoice."
	msgDBErrorUpdate       = "Database Error: Failed to Update Invoice."
	msgDBErrorDelete       = "Database Error: Failed to Delete Invoice."
	msgDeleted             = "Deleted Invoice."
)

// ActionResult はフォームアクションの終端結果を表すタグ付きバリアント。
// Redirectが非空なら呼び出し側（HTTPハンドラー）がそのパスへ誘導する。
// FieldErrorsが非nilなら検証失敗で、フォームを再表示する。
// それ以外はMessageをユーザーに表示する。
// リダイレクトを例外的な制御移転で表現せず、明示的な戻り値として返すことで、
// 後続のクリーンアップ処理が飛ばされる余地をなくしている。
type ActionResult struct {
	Redirect    string
	Message     string
	FieldErrors map[string][]string
}

// Invalidator はレンダーキャッシュの破棄に必要なインターフェース。
type Invalidator interface {
	Invalidate(path string)
}

// MetricsRecorder はミューテーション結果の計測に必要なインターフェース。
type MetricsRecorder interface {
	RecordMutation(operation, outcome string)
}

// Service は請求書ミューテーション（作成・更新・削除）のサービス層。
// 各操作は単一のパラメータ化SQL文を発行し、成功時のみキャッシュを破棄する。
// 永続化の失敗はローカルで回復し、ユーザー向けメッセージに変換して返す。
type Service struct {
	repo    repository.InvoiceRepository
	cache   Invalidator
	metrics MetricsRecorder

	// テストから注入可能な現在時刻（作成日の割り当てに使用）
	now func() time.Time
}

// NewService はServiceを生成する。
func NewService(repo repository.InvoiceRepository, cache Invalidator, metrics MetricsRecorder) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
		now:     time.Now,
	}
}

// CreateInvoice はフォームを検証し、新しい請求書を1文のINSERTで作成する。
// IDと作成日はここでサーバーが割り当てる。
// 成功時は一覧キャッシュを破棄し、一覧ページへのリダイレクトを返す。
func (s *Service) CreateInvoice(ctx context.Context, form Form) ActionResult {
	fields, fieldErrors := form.Validate()
	if fieldErrors != nil {
		return ActionResult{
			Message:     msgMissingFieldsCreate,
			FieldErrors: fieldErrors,
		}
	}

	inv := &model.Invoice{
		ID:         uuid.New().String(),
		CustomerID: fields.CustomerID,
		Amount:     fields.AmountCents,
		Status:     fields.Status,
		Date:       s.now().Format("2006-01-02"),
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		slog.Error("failed to create invoice",
			slog.String("customer_id", inv.CustomerID),
			slog.String("error", err.Error()),
		)
		s.recordMutation("create", "error")
		return ActionResult{Message: msgDBErrorCreate}
	}

	s.recordMutation("create", "success")
	s.cache.Invalidate(InvoicesPath)
	return ActionResult{Redirect: InvoicesPath}
}

// UpdateInvoice はフォームを検証し、指定IDの請求書を1文のUPDATEで更新する。
// 更新対象はcustomerId/amount/statusのみで、idとdateは変更しない。
func (s *Service) UpdateInvoice(ctx context.Context, id string, form Form) ActionResult {
	fields, fieldErrors := form.Validate()
	if fieldErrors != nil {
		return ActionResult{
			Message:     msgMissingFieldsUpdate,
			FieldErrors: fieldErrors,
		}
	}

	inv := &model.Invoice{
		ID:         id,
		CustomerID: fields.CustomerID,
		Amount:     fields.AmountCents,
		Status:     fields.Status,
	}

	if err := s.repo.Update(ctx, inv); err != nil {
		slog.Error("failed to update invoice",
			slog.String("invoice_id", id),
			slog.String("error", err.Error()),
		)
		s.recordMutation("update", "error")
		return ActionResult{Message: msgDBErrorUpdate}
	}

	s.recordMutation("update", "success")
	s.cache.Invalidate(InvoicesPath)
	return ActionResult{Redirect: InvoicesPath}
}

// DeleteInvoice は指定IDの請求書を1文のDELETEで削除する。
// 行が既に不在でも成功として扱う（冪等削除）。
// 一覧内から呼ばれる操作のためリダイレクトは返さず、メッセージのみ返す。
func (s *Service) DeleteInvoice(ctx context.Context, id string) ActionResult {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		slog.Error("failed to delete invoice",
			slog.String("invoice_id", id),
			slog.String("error", err.Error()),
		)
		s.recordMutation("delete", "error")
		return ActionResult{Message: msgDBErrorDelete}
	}

	s.recordMutation("delete", "success")
	s.cache.Invalidate(InvoicesPath)
	return ActionResult{Message: msgDeleted}
}

func (s *Service) recordMutation(operation, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordMutation(operation, outcome)
	}
}
