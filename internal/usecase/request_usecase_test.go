package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sam2op/ProjectEase/internal/domain/entities"
	"github.com/Sam2op/ProjectEase/internal/usecase/interfaces"
	mock_interfaces "github.com/Sam2op/ProjectEase/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

func inlineDispatch(uc *RequestUseCase) *RequestUseCase {
	uc.dispatch = func(f func()) { f() }
	return uc
}

func strPtr(s string) *string { return &s }

func statusPtr(s entities.RequestStatus) *entities.RequestStatus { return &s }

func int64Ptr(n int64) *int64 { return &n }

func TestRequestUseCase_Create_Validations(t *testing.T) {
	account := &entities.AccountRef{ID: "acc-1", Email: "user@test.com"}
	guest := &entities.GuestContact{Name: "Guest", Email: "guest@test.com"}

	cases := []struct {
		name  string
		input CreateRequestInput
		want  error
	}{
		{
			name:  "unknown client type",
			input: CreateRequestInput{ClientType: "bot", ProjectID: "proj-1", PaymentOption: entities.PaymentOptionFull},
			want:  ErrInvalidClientType,
		},
		{
			name:  "registered without account",
			input: CreateRequestInput{ClientType: entities.ClientTypeRegistered, ProjectID: "proj-1", PaymentOption: entities.PaymentOptionFull},
			want:  ErrRequesterConflict,
		},
		{
			name:  "registered with guest contact too",
			input: CreateRequestInput{ClientType: entities.ClientTypeRegistered, Account: account, Guest: guest, ProjectID: "proj-1", PaymentOption: entities.PaymentOptionFull},
			want:  ErrRequesterConflict,
		},
		{
			name:  "guest without contact",
			input: CreateRequestInput{ClientType: entities.ClientTypeGuest, ProjectID: "proj-1", PaymentOption: entities.PaymentOptionFull},
			want:  ErrRequesterConflict,
		},
		{
			name:  "guest with blank email",
			input: CreateRequestInput{ClientType: entities.ClientTypeGuest, Guest: &entities.GuestContact{Name: "Guest", Email: "  "}, ProjectID: "proj-1", PaymentOption: entities.PaymentOptionFull},
			want:  ErrRequesterConflict,
		},
		{
			name:  "neither project nor custom project",
			input: CreateRequestInput{ClientType: entities.ClientTypeRegistered, Account: account, PaymentOption: entities.PaymentOptionFull},
			want:  ErrProjectConflict,
		},
		{
			name: "both project and custom project",
			input: CreateRequestInput{
				ClientType: entities.ClientTypeRegistered, Account: account,
				ProjectID: "proj-1", CustomProject: &entities.CustomProject{Name: "Custom"},
				PaymentOption: entities.PaymentOptionFull,
			},
			want: ErrProjectConflict,
		},
		{
			name: "custom project without name",
			input: CreateRequestInput{
				ClientType: entities.ClientTypeRegistered, Account: account,
				CustomProject: &entities.CustomProject{Description: "no name"},
				PaymentOption: entities.PaymentOptionFull,
			},
			want: ErrProjectConflict,
		},
		{
			name:  "invalid payment option",
			input: CreateRequestInput{ClientType: entities.ClientTypeRegistered, Account: account, ProjectID: "proj-1", PaymentOption: "installments"},
			want:  ErrInvalidPaymentOption,
		},
		{
			name:  "negative estimated price",
			input: CreateRequestInput{ClientType: entities.ClientTypeRegistered, Account: account, ProjectID: "proj-1", PaymentOption: entities.PaymentOptionFull, EstimatedPrice: -1},
			want:  ErrInvalidAmount,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := NewRequestUseCase(nil, nil, "admin@test.com", nil)
			_, err := uc.Create(context.Background(), tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRequestUseCase_Create_Success(t *testing.T) {
	t.Run("registered request starts pending and notifies the account email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIRequestRepository(ctrl)
		notifier := mock_interfaces.NewMockINotificationGateway(ctrl)
		uc := inlineDispatch(NewRequestUseCase(repo, notifier, "admin@test.com", nil))

		repo.EXPECT().Create(gomock.Any(), gomock.AssignableToTypeOf(entities.Request{})).DoAndReturn(
			func(_ context.Context, r entities.Request) (entities.Request, error) {
				if r.ID == "" {
					t.Fatalf("id must be assigned")
				}
				if r.Status != entities.StatusPending || r.PaymentStatus != entities.PaymentStatePending {
					t.Fatalf("new request must start pending/pending, got %s/%s", r.Status, r.PaymentStatus)
				}
				if r.StatusHistory == nil || len(r.StatusHistory) != 0 {
					t.Fatalf("history must start empty, got %+v", r.StatusHistory)
				}
				if r.CreatedAt.IsZero() || !r.CreatedAt.Equal(r.UpdatedAt) {
					t.Fatalf("timestamps must be set and equal on creation")
				}
				return r, nil
			},
		)
		notifier.EXPECT().Send(gomock.Any(), "user@test.com", "New Project Request", gomock.Any()).Return(nil)

		created, err := uc.Create(context.Background(), CreateRequestInput{
			ClientType:    entities.ClientTypeRegistered,
			Account:       &entities.AccountRef{ID: "acc-1", Email: "user@test.com"},
			ProjectID:     " proj-1 ",
			PaymentOption: entities.PaymentOptionAdvance,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.ProjectID != "proj-1" {
			t.Fatalf("project id must be trimmed, got %q", created.ProjectID)
		}
	})

	t.Run("guest request notifies the guest contact email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIRequestRepository(ctrl)
		notifier := mock_interfaces.NewMockINotificationGateway(ctrl)
		uc := inlineDispatch(NewRequestUseCase(repo, notifier, "admin@test.com", nil))

		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, r entities.Request) (entities.Request, error) { return r, nil },
		)
		notifier.EXPECT().Send(gomock.Any(), "guest@test.com", "New Project Request", gomock.Any()).Return(nil)

		_, err := uc.Create(context.Background(), CreateRequestInput{
			ClientType:    entities.ClientTypeGuest,
			Guest:         &entities.GuestContact{Name: "Guest", Email: "guest@test.com"},
			CustomProject: &entities.CustomProject{Name: "Inventory tracker"},
			PaymentOption: entities.PaymentOptionFull,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("notification failure does not fail the create", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIRequestRepository(ctrl)
		notifier := mock_interfaces.NewMockINotificationGateway(ctrl)
		uc := inlineDispatch(NewRequestUseCase(repo, notifier, "admin@test.com", nil))

		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, r entities.Request) (entities.Request, error) { return r, nil },
		)
		notifier.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

		_, err := uc.Create(context.Background(), CreateRequestInput{
			ClientType:    entities.ClientTypeGuest,
			Guest:         &entities.GuestContact{Name: "Guest", Email: "guest@test.com"},
			ProjectID:     "proj-1",
			PaymentOption: entities.PaymentOptionFull,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("repository error surfaces and nothing is sent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIRequestRepository(ctrl)
		notifier := mock_interfaces.NewMockINotificationGateway(ctrl)
		uc := inlineDispatch(NewRequestUseCase(repo, notifier, "admin@test.com", nil))

		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(entities.Request{}, errors.New("db"))

		_, err := uc.Create(context.Background(), CreateRequestInput{
			ClientType:    entities.ClientTypeGuest,
			Guest:         &entities.GuestContact{Name: "Guest", Email: "guest@test.com"},
			ProjectID:     "proj-1",
			PaymentOption: entities.PaymentOptionFull,
		})
		if err == nil || err.Error() != "db" {
			t.Fatalf("expected db error, got %v", err)
		}
	})
}

func TestRequestUseCase_GetByID(t *testing.T) {
	t.Run("blank id", func(t *testing.T) {
		uc := NewRequestUseCase(nil, nil, "", nil)
		_, err := uc.GetByID(context.Background(), "  ")
		if !errors.Is(err, ErrInvalidRequestID) {
			t.Fatalf("expected ErrInvalidRequestID, got %v", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIRequestRepository(ctrl)
		uc := NewRequestUseCase(repo, nil, "", nil)
		repo.EXPECT().GetByID(gomock.Any(), "req-1").Return(entities.Request{}, nil)

		_, err := uc.GetByID(context.Background(), "req-1")
		if !errors.Is(err, ErrRequestNotFound) {
			t.Fatalf("expected ErrRequestNotFound, got %v", err)
		}
	})

	t.Run("success trims the id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIRequestRepository(ctrl)
		uc := NewRequestUseCase(repo, nil, "", nil)
		repo.EXPECT().GetByID(gomock.Any(), "req-1").Return(entities.Request{ID: "req-1"}, nil)

		r, err := uc.GetByID(context.Background(), " req-1 ")
		if err != nil || r.ID != "req-1" {
			t.Fatalf("unexpected result err=%v r=%+v", err, r)
		}
	})
}

func TestRequestUseCase_Listings(t *testing.T) {
	t.Run("ListByAccountID blank id", func(t *testing.T) {
		uc := NewRequestUseCase(nil, nil, "", nil)
		_, err := uc.ListByAccountID(context.Background(), " ")
		if !errors.Is(err, ErrInvalidAccountID) {
			t.Fatalf("expected ErrInvalidAccountID, got %v", err)
		}
	})

	t.Run("ListByAccountID success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIRequestRepository(ctrl)
		uc := NewRequestUseCase(repo, nil, "", nil)
		repo.EXPECT().ListByAccountID(gomock.Any(), "acc-1").Return([]entities.Request{{ID: "r1"}}, nil)

		res, err := uc.ListByAccountID(context.Background(), " acc-1 ")
		if err != nil || len(res) != 1 || res[0].ID != "r1" {
			t.Fatalf("unexpected result err=%v res=%+v", err, res)
		}
	})

	t.Run("ListAll passes through", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIRequestRepository(ctrl)
		uc := NewRequestUseCase(repo, nil, "", nil)
		repo.EXPECT().ListAll(gomock.Any()).Return([]entities.Request{{ID: "r1"}, {ID: "r2"}}, nil)

		res, err := uc.ListAll(context.Background())
		if err != nil || len(res) != 2 {
			t.Fatalf("unexpected result err=%v res=%+v", err, res)
		}
	})
}

func TestRequestUseCase_Update_Validations(t *testing.T) {
	t.Run("blank request id", func(t *testing.T) {
		uc := NewRequestUseCase(nil, nil, "", nil)
		_, err := uc.Update(context.Background(), " ", UpdateRequestInput{}, "admin-1")
		if !errors.Is(err, ErrInvalidRequestID) {
			t.Fatalf("expected ErrInvalidRequestID, got %v", err)
		}
	})

	t.Run("blank admin id", func(t *testing.T) {
		uc := NewRequestUseCase(nil, nil, "", nil)
		_, err := uc.Update(context.Background(), "req-1", UpdateRequestInput{}, " ")
		if !errors.Is(err, ErrInvalidAdminID) {
			t.Fatalf("expected ErrInvalidAdminID, got %v", err)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		uc := NewRequestUseCase(nil, nil, "", nil)
		_, err := uc.Update(context.Background(), "req-1", UpdateRequestInput{Status: statusPtr("archived")}, "admin-1")
		if !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("expected ErrInvalidStatus, got %v", err)
		}
	})

	t.Run("unknown payment state", func(t *testing.T) {
		state := entities.PaymentState("refunded")
		uc := NewRequestUseCase(nil, nil, "", nil)
		_, err := uc.Update(context.Background(), "req-1", UpdateRequestInput{PaymentStatus: &state}, "admin-1")
		if !errors.Is(err, ErrInvalidPaymentState) {
			t.Fatalf("expected ErrInvalidPaymentState, got %v", err)
		}
	})

	t.Run("negative actual price", func(t *testing.T) {
		uc := NewRequestUseCase(nil, nil, "", nil)
		_, err := uc.Update(context.Background(), "req-1", UpdateRequestInput{ActualPrice: int64Ptr(-5)}, "admin-1")
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("not found leaves nothing persisted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIRequestRepository(ctrl)
		uc := NewRequestUseCase(repo, nil, "", nil)
		repo.EXPECT().GetByID(gomock.Any(), "req-1").Return(entities.Request{}, nil)

		_, err := uc.Update(context.Background(), "req-1", UpdateRequestInput{AdminNotes: strPtr("hi")}, "admin-1")
		if !errors.Is(err, ErrRequestNotFound) {
			t.Fatalf("expected ErrRequestNotFound, got %v", err)
		}
	})
}

func TestRequestUseCase_Update_TransitionWhitelist(t *testing.T) {
	cases := []struct {
		name string
		from entities.RequestStatus
		to   entities.RequestStatus
		ok   bool
	}{
		{name: "pending to approved", from: entities.StatusPending, to: entities.StatusApproved, ok: true},
		{name: "pending to rejected", from: entities.StatusPending, to: entities.StatusRejected, ok: true},
		{name: "pending skips to in-progress", from: entities.StatusPending, to: entities.StatusInProgress, ok: false},
		{name: "pending skips to completed", from: entities.StatusPending, to: entities.StatusCompleted, ok: false},
		{name: "approved to in-progress", from: entities.StatusApproved, to: entities.StatusInProgress, ok: true},
		{name: "approved back to pending", from: entities.StatusApproved, to: entities.StatusPending, ok: false},
		{name: "in-progress to completed", from: entities.StatusInProgress, to: entities.StatusCompleted, ok: true},
		{name: "completed is terminal", from: entities.StatusCompleted, to: entities.StatusInProgress, ok: false},
		{name: "rejected is terminal", from: entities.StatusRejected, to: entities.StatusApproved, ok: false},
		{name: "same status is allowed", from: entities.StatusApproved, to: entities.StatusApproved, ok: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			repo := mock_interfaces.NewMockIRequestRepository(ctrl)
			uc := inlineDispatch(NewRequestUseCase(repo, nil, "", nil))

			repo.EXPECT().GetByID(gomock.Any(), "req-1").Return(entities.Request{ID: "req-1", Status: tc.from}, nil)
			if tc.ok {
				repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, r entities.Request, _ int64) (entities.Request, error) { return r, nil },
				)
			}

			_, err := uc.Update(context.Background(), "req-1", UpdateRequestInput{Status: &tc.to}, "admin-1")
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("expected ErrInvalidTransition, got %v", err)
			}
		})
	}
}

func TestRequestUseCase_Update_HistoryAndTimestamps(t *testing.T) {
	t.Run("every update appends exactly one history entry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIRequestRepository(ctrl)
		uc := inlineDispatch(NewRequestUseCase(repo, nil, "", nil))

		stored := entities.Request{ID: "req-1", Status: entities.StatusPending, Version: 1}
		repo.EXPECT().GetByID(gomock.Any(), "req-1").Return(stored, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(1)).DoAndReturn(
			func(_ context.Context, r entities.Request, _ int64) (entities.Request, error) {
				r.Version++
				return r, nil
			},
		)

		updated, err := uc.Update(context.Background(), "req-1", UpdateRequestInput{
			Status:     statusPtr(entities.StatusApproved),
			AdminNotes: strPtr("looks good"),
		}, "admin-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(updated.StatusHistory) != 1 {
			t.Fatalf("expected one history entry, got %d", len(updated.StatusHistory))
		}
		entry := updated.StatusHistory[0]
		if entry.Status != entities.StatusApproved || entry.Notes != "looks good" || entry.UpdatedBy != "admin-1" {
			t.Fatalf("unexpected history entry: %+v", entry)
		}
		if entry.UpdatedAt.IsZero() {
			t.Fatalf("history timestamp must be set")
		}
		if updated.ApprovedAt == nil {
			t.Fatalf("approval must stamp approvedAt")
		}
	})

	t.Run("notes-only re-update keeps approvedAt and still appends", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIRequestRepository(ctrl)
		uc := inlineDispatch(NewRequestUseCase(repo, nil, "", nil))

		firstApproval := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		stored := entities.Request{
			ID:         "req-1",
			Status:     entities.StatusApproved,
			ApprovedAt: &firstApproval,
			StatusHistory: []entities.StatusHistoryEntry{
				{Status: entities.StatusApproved, UpdatedBy: "admin-1", UpdatedAt: firstApproval},
			},
			Version: 2,
		}
		repo.EXPECT().GetByID(gomock.Any(), "req-1").Return(stored, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(2)).DoAndReturn(
			func(_ context.Context, r entities.Request, _ int64) (entities.Request, error) { return r, nil },
		)

		updated, err := uc.Update(context.Background(), "req-1", UpdateRequestInput{
			Status:     statusPtr(entities.StatusApproved),
			AdminNotes: strPtr("kickoff scheduled"),
		}, "admin-2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(updated.StatusHistory) != 2 {
			t.Fatalf("expected two history entries, got %d", len(updated.StatusHistory))
		}
		if !updated.ApprovedAt.Equal(firstApproval) {
			t.Fatalf("approvedAt must not move on re-approval, got %v", updated.ApprovedAt)
		}
	})

	t.Run("completion stamps completedAt once", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIRequestRepository(ctrl)
		uc := inlineDispatch(NewRequestUseCase(repo, nil, "", nil))

		repo.EXPECT().GetByID(gomock.Any(), "req-1").Return(entities.Request{ID: "req-1", Status: entities.StatusInProgress}, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, r entities.Request, _ int64) (entities.Request, error) { return r, nil },
		)

		updated, err := uc.Update(context.Background(), "req-1", UpdateRequestInput{Status: statusPtr(entities.StatusCompleted)}, "admin-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.CompletedAt == nil {
			t.Fatalf("completion must stamp completedAt")
		}
	})
}

func TestRequestUseCase_Update_PaymentStateCoupling(t *testing.T) {
	t.Run("completed payment on pending request is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIRequestRepository(ctrl)
		uc := NewRequestUseCase(repo, nil, "", nil)

		state := entities.PaymentStateCompleted
		repo.EXPECT().GetByID(gomock.Any(), "req-1").Return(entities.Request{ID: "req-1", Status: entities.StatusPending}, nil)

		_, err := uc.Update(context.Background(), "req-1", UpdateRequestInput{PaymentStatus: &state}, "admin-1")
		if !errors.Is(err, ErrPaymentStateConflict) {
			t.Fatalf("expected ErrPaymentStateConflict, got %v", err)
		}
	})

	t.Run("completed payment on in-progress request is fine", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIRequestRepository(ctrl)
		uc := inlineDispatch(NewRequestUseCase(repo, nil, "", nil))

		state := entities.PaymentStateCompleted
		repo.EXPECT().GetByID(gomock.Any(), "req-1").Return(entities.Request{ID: "req-1", Status: entities.StatusInProgress}, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, r entities.Request, _ int64) (entities.Request, error) { return r, nil },
		)

		updated, err := uc.Update(context.Background(), "req-1", UpdateRequestInput{PaymentStatus: &state}, "admin-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.PaymentStatus != entities.PaymentStateCompleted {
			t.Fatalf("expected completed payment state, got %s", updated.PaymentStatus)
		}
	})
}

func TestRequestUseCase_Update_Concurrency(t *testing.T) {
	t.Run("version conflict reloads and retries", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIRequestRepository(ctrl)
		uc := inlineDispatch(NewRequestUseCase(repo, nil, "", nil))

		first := entities.Request{ID: "req-1", Status: entities.StatusPending, Version: 1}
		second := entities.Request{ID: "req-1", Status: entities.StatusPending, Version: 2}
		gomock.InOrder(
			repo.EXPECT().GetByID(gomock.Any(), "req-1").Return(first, nil),
			repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(1)).Return(entities.Request{}, interfaces.ErrVersionConflict),
			repo.EXPECT().GetByID(gomock.Any(), "req-1").Return(second, nil),
			repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(2)).DoAndReturn(
				func(_ context.Context, r entities.Request, _ int64) (entities.Request, error) { return r, nil },
			),
		)

		updated, err := uc.Update(context.Background(), "req-1", UpdateRequestInput{Status: statusPtr(entities.StatusApproved)}, "admin-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(updated.StatusHistory) != 1 {
			t.Fatalf("retry must not duplicate history entries, got %d", len(updated.StatusHistory))
		}
	})

	t.Run("exhausted retries surface ErrConcurrentUpdate", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIRequestRepository(ctrl)
		uc := inlineDispatch(NewRequestUseCase(repo, nil, "", nil))

		stored := entities.Request{ID: "req-1", Status: entities.StatusPending, Version: 1}
		repo.EXPECT().GetByID(gomock.Any(), "req-1").Return(stored, nil).Times(maxUpdateAttempts)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(entities.Request{}, interfaces.ErrVersionConflict).Times(maxUpdateAttempts)

		_, err := uc.Update(context.Background(), "req-1", UpdateRequestInput{AdminNotes: strPtr("x")}, "admin-1")
		if !errors.Is(err, ErrConcurrentUpdate) {
			t.Fatalf("expected ErrConcurrentUpdate, got %v", err)
		}
	})
}

func TestRequestUseCase_Update_Notifications(t *testing.T) {
	t.Run("requester and admin both get the update mail", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIRequestRepository(ctrl)
		notifier := mock_interfaces.NewMockINotificationGateway(ctrl)
		uc := inlineDispatch(NewRequestUseCase(repo, notifier, "admin@test.com", nil))

		stored := entities.Request{
			ID:         "req-1",
			ClientType: entities.ClientTypeGuest,
			Guest:      &entities.GuestContact{Name: "Guest", Email: "guest@test.com"},
			Status:     entities.StatusPending,
		}
		repo.EXPECT().GetByID(gomock.Any(), "req-1").Return(stored, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, r entities.Request, _ int64) (entities.Request, error) { return r, nil },
		)
		notifier.EXPECT().Send(gomock.Any(), "guest@test.com", "Request APPROVED", "Your request is now approved. team will reach out").Return(nil)
		notifier.EXPECT().Send(gomock.Any(), "admin@test.com", "ADMIN: Request APPROVED", "Request ID: req-1\nYour request is now approved. team will reach out").Return(nil)

		_, err := uc.Update(context.Background(), "req-1", UpdateRequestInput{
			Status:     statusPtr(entities.StatusApproved),
			AdminNotes: strPtr("team will reach out"),
		}, "admin-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("send failures are swallowed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIRequestRepository(ctrl)
		notifier := mock_interfaces.NewMockINotificationGateway(ctrl)
		uc := inlineDispatch(NewRequestUseCase(repo, notifier, "admin@test.com", nil))

		stored := entities.Request{
			ID:         "req-1",
			ClientType: entities.ClientTypeGuest,
			Guest:      &entities.GuestContact{Name: "Guest", Email: "guest@test.com"},
			Status:     entities.StatusPending,
		}
		repo.EXPECT().GetByID(gomock.Any(), "req-1").Return(stored, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, r entities.Request, _ int64) (entities.Request, error) { return r, nil },
		)
		notifier.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("ses throttled")).Times(2)

		_, err := uc.Update(context.Background(), "req-1", UpdateRequestInput{Status: statusPtr(entities.StatusApproved)}, "admin-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
