package matmul

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/golang/mock/gomock"

	apperrors "github.com/agbru/mpmatmul/internal/errors"
	"github.com/agbru/mpmatmul/internal/mpi"
	"github.com/agbru/mpmatmul/internal/mpi/mocks"
)

func newMockComm(ctrl *gomock.Controller, rank, size int) *mocks.MockComm {
	comm := mocks.NewMockComm(ctrl)
	comm.EXPECT().Rank().Return(rank).AnyTimes()
	comm.EXPECT().Size().Return(size).AnyTimes()
	return comm
}

// TestCoordinator_ScriptedExchange drives the dispatch loop against a
// scripted substrate: prime, poll until a result arrives, hand the replying
// worker the next index, and stop once every cell is in.
func TestCoordinator_ScriptedExchange(t *testing.T) {
	ctrl := gomock.NewController(t)
	comm := newMockComm(ctrl, 0, 2)
	req1 := mocks.NewMockRequest(ctrl)
	req2 := mocks.NewMockRequest(ctrl)
	req3 := mocks.NewMockRequest(ctrl)
	from1 := mpi.Status{Source: 1, Tag: mpi.TagResult}

	gomock.InOrder(
		comm.EXPECT().Irecv(mpi.AnySource, mpi.TagResult).Return(req1),
		comm.EXPECT().Send(gomock.Any(), 1, mpi.TagTask, Work{Index: 0}).Return(nil),
		req1.EXPECT().Test().Return(nil, mpi.Status{}, false, nil).Times(3),
		req1.EXPECT().Test().Return(Result{Index: 0, Value: 5}, from1, true, nil),
		comm.EXPECT().Send(gomock.Any(), 1, mpi.TagTask, Work{Index: 1}).Return(nil),
		comm.EXPECT().Irecv(mpi.AnySource, mpi.TagResult).Return(req2),
		req2.EXPECT().Test().Return(Result{Index: 1, Value: 7}, from1, true, nil),
		comm.EXPECT().Irecv(mpi.AnySource, mpi.TagResult).Return(req3),
		req3.EXPECT().Cancel(),
		comm.EXPECT().Send(gomock.Any(), 1, mpi.TagTask, Stop{}).Return(nil),
	)

	c, err := newCoordinator(comm, 1, 2, newOptions(nil)).run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !slices.Equal(c, []float64{5, 7}) {
		t.Errorf("C = %v, want [5 7]", c)
	}
}

// TestCoordinator_PrimingIsGuarded verifies that with more workers than
// cells only the available indices are sent, and every worker is stopped.
func TestCoordinator_PrimingIsGuarded(t *testing.T) {
	ctrl := gomock.NewController(t)
	comm := newMockComm(ctrl, 0, 4)
	req1 := mocks.NewMockRequest(ctrl)
	req2 := mocks.NewMockRequest(ctrl)

	gomock.InOrder(
		comm.EXPECT().Irecv(mpi.AnySource, mpi.TagResult).Return(req1),
		comm.EXPECT().Send(gomock.Any(), 1, mpi.TagTask, Work{Index: 0}).Return(nil),
		req1.EXPECT().Test().Return(Result{Index: 0, Value: 2.5}, mpi.Status{Source: 1, Tag: mpi.TagResult}, true, nil),
		comm.EXPECT().Irecv(mpi.AnySource, mpi.TagResult).Return(req2),
		req2.EXPECT().Cancel(),
		comm.EXPECT().Send(gomock.Any(), 1, mpi.TagTask, Stop{}).Return(nil),
		comm.EXPECT().Send(gomock.Any(), 2, mpi.TagTask, Stop{}).Return(nil),
		comm.EXPECT().Send(gomock.Any(), 3, mpi.TagTask, Stop{}).Return(nil),
	)

	c, err := newCoordinator(comm, 1, 1, newOptions(nil)).run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !slices.Equal(c, []float64{2.5}) {
		t.Errorf("C = %v, want [2.5]", c)
	}
}

func TestCoordinator_SendFailureIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	comm := newMockComm(ctrl, 0, 3)
	req := mocks.NewMockRequest(ctrl)
	broken := errors.New("link down")

	gomock.InOrder(
		comm.EXPECT().Irecv(mpi.AnySource, mpi.TagResult).Return(req),
		comm.EXPECT().Send(gomock.Any(), 1, mpi.TagTask, Work{Index: 0}).Return(broken),
		req.EXPECT().Cancel(),
	)

	_, err := newCoordinator(comm, 2, 2, newOptions(nil)).run(context.Background())
	var commErr apperrors.CommError
	if !errors.As(err, &commErr) {
		t.Fatalf("got %v, want CommError", err)
	}
	if commErr.Op != "send" || commErr.Rank != 0 || !errors.Is(err, broken) {
		t.Errorf("unexpected error %+v", commErr)
	}
}

func TestCoordinator_TestFailureIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	comm := newMockComm(ctrl, 0, 2)
	req := mocks.NewMockRequest(ctrl)

	gomock.InOrder(
		comm.EXPECT().Irecv(mpi.AnySource, mpi.TagResult).Return(req),
		comm.EXPECT().Send(gomock.Any(), 1, mpi.TagTask, Work{Index: 0}).Return(nil),
		req.EXPECT().Test().Return(nil, mpi.Status{}, false, mpi.ErrClosed),
	)

	_, err := newCoordinator(comm, 1, 1, newOptions(nil)).run(context.Background())
	if !errors.Is(err, mpi.ErrClosed) {
		t.Errorf("got %v, want ErrClosed in the chain", err)
	}
}

func TestCoordinator_RejectsMalformedResults(t *testing.T) {
	tests := []struct {
		name    string
		payload any
	}{
		{"wrong payload type", Work{Index: 0}},
		{"index past the end", Result{Index: 4, Value: 1}},
		{"negative index", Result{Index: -1, Value: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			comm := newMockComm(ctrl, 0, 2)
			req := mocks.NewMockRequest(ctrl)

			gomock.InOrder(
				comm.EXPECT().Irecv(mpi.AnySource, mpi.TagResult).Return(req),
				comm.EXPECT().Send(gomock.Any(), 1, mpi.TagTask, Work{Index: 0}).Return(nil),
				req.EXPECT().Test().Return(tt.payload, mpi.Status{Source: 1, Tag: mpi.TagResult}, true, nil),
			)

			_, err := newCoordinator(comm, 2, 2, newOptions(nil)).run(context.Background())
			if !errors.Is(err, ErrProtocol) {
				t.Errorf("got %v, want ErrProtocol", err)
			}
		})
	}
}

func TestCoordinator_ContextCanceledWhilePolling(t *testing.T) {
	ctrl := gomock.NewController(t)
	comm := newMockComm(ctrl, 0, 2)
	req := mocks.NewMockRequest(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	gomock.InOrder(
		comm.EXPECT().Irecv(mpi.AnySource, mpi.TagResult).Return(req),
		comm.EXPECT().Send(gomock.Any(), 1, mpi.TagTask, Work{Index: 0}).Return(nil),
		req.EXPECT().Test().DoAndReturn(func() (any, mpi.Status, bool, error) {
			cancel()
			return nil, mpi.Status{}, false, nil
		}),
		req.EXPECT().Cancel(),
	)

	_, err := newCoordinator(comm, 1, 1, newOptions(nil)).run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled in the chain", err)
	}
}

func newTestWorker(comm mpi.Comm) *worker {
	return &worker{
		comm:   comm,
		a:      []float64{1, 2, 3, 4},
		b:      []float64{5, 6, 7, 8},
		n:      2,
		p:      2,
		total:  4,
		logger: newOptions(nil).logger,
	}
}

func TestWorker_AnswersUntilStopped(t *testing.T) {
	ctrl := gomock.NewController(t)
	comm := newMockComm(ctrl, 2, 3)

	gomock.InOrder(
		comm.EXPECT().Recv(gomock.Any(), CoordinatorRank, mpi.TagTask).Return(Work{Index: 1}, mpi.Status{Source: 0, Tag: mpi.TagTask}, nil),
		comm.EXPECT().Send(gomock.Any(), CoordinatorRank, mpi.TagResult, Result{Index: 1, Value: 22}).Return(nil),
		comm.EXPECT().Recv(gomock.Any(), CoordinatorRank, mpi.TagTask).Return(Work{Index: 2}, mpi.Status{Source: 0, Tag: mpi.TagTask}, nil),
		comm.EXPECT().Send(gomock.Any(), CoordinatorRank, mpi.TagResult, Result{Index: 2, Value: 43}).Return(nil),
		comm.EXPECT().Recv(gomock.Any(), CoordinatorRank, mpi.TagTask).Return(Stop{}, mpi.Status{Source: 0, Tag: mpi.TagTask}, nil),
	)

	if err := newTestWorker(comm).run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestWorker_Failures(t *testing.T) {
	broken := errors.New("link down")
	tests := []struct {
		name    string
		payload any
		recvErr error
		want    error
	}{
		{"receive failure", nil, broken, broken},
		{"unknown payload", 42, nil, ErrProtocol},
		{"index out of range", Work{Index: 4}, nil, ErrProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			comm := newMockComm(ctrl, 1, 2)
			comm.EXPECT().Recv(gomock.Any(), CoordinatorRank, mpi.TagTask).Return(tt.payload, mpi.Status{}, tt.recvErr)

			err := newTestWorker(comm).run(context.Background())
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWorker_SendFailureIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	comm := newMockComm(ctrl, 1, 2)
	broken := errors.New("link down")

	gomock.InOrder(
		comm.EXPECT().Recv(gomock.Any(), CoordinatorRank, mpi.TagTask).Return(Work{Index: 0}, mpi.Status{}, nil),
		comm.EXPECT().Send(gomock.Any(), CoordinatorRank, mpi.TagResult, Result{Index: 0, Value: 19}).Return(broken),
	)

	err := newTestWorker(comm).run(context.Background())
	var commErr apperrors.CommError
	if !errors.As(err, &commErr) || commErr.Op != "send" || commErr.Rank != 1 {
		t.Errorf("got %v, want send CommError from rank 1", err)
	}
}
