package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftswap/config"
	"shiftswap/internal/dto"
	"shiftswap/internal/repository"
	"shiftswap/internal/swap"
)

// SwapService 换班申请业务接口
//
// 列表/详情读取内存集合；approve/decline/create 经 Coordinator 写入数据库后同步集合。
type SwapService interface {
	// Start 从数据库加载集合
	Start(ctx context.Context) error
	// RunRefresher 定时与数据库同步，直到 ctx 结束
	RunRefresher(ctx context.Context)
	ListView(ctx context.Context, viewer swap.Viewer, status string) (*dto.SwapViewResponse, error)
	Get(ctx context.Context, viewer swap.Viewer, id string) (*dto.SwapRequestResponse, error)
	Create(ctx context.Context, viewer swap.Viewer, req *dto.CreateSwapRequest) (*dto.SwapRequestResponse, error)
	Approve(ctx context.Context, viewer swap.Viewer, id string) (*dto.SwapRequestResponse, error)
	Decline(ctx context.Context, viewer swap.Viewer, id string) (*dto.SwapRequestResponse, error)
	Share(ctx context.Context, viewer swap.Viewer, id string) (*dto.ShareResponse, error)
	// Calendar 生成申请涉及班次的 iCalendar 文本
	Calendar(ctx context.Context, viewer swap.Viewer, id string) (string, error)
	// Shutdown 等待进行中的操作完成后销毁集合
	Shutdown(ctx context.Context) error
}

type swapService struct {
	cfg    *config.Config
	repo   *repository.Repository
	coord  *swap.Coordinator
	logger *zap.Logger
}

// NewSwapService 创建 SwapService 实例
func NewSwapService(
	cfg *config.Config,
	repo *repository.Repository,
	coord *swap.Coordinator,
	logger *zap.Logger,
) SwapService {
	return &swapService{
		cfg:    cfg,
		repo:   repo,
		coord:  coord,
		logger: logger,
	}
}

func (s *swapService) Start(ctx context.Context) error {
	if err := s.coord.Refresh(ctx); err != nil {
		s.logger.Error("加载换班申请失败", zap.Error(err))
		return err
	}
	s.logger.Info("换班申请加载完成", zap.Int("count", s.coord.Store().Len()))
	return nil
}

func (s *swapService) RunRefresher(ctx context.Context) {
	s.coord.RunRefresher(ctx, s.cfg.Swap.RefreshInterval)
}

func (s *swapService) ListView(_ context.Context, viewer swap.Viewer, status string) (*dto.SwapViewResponse, error) {
	filter, err := swap.ParseFilter(status)
	if err != nil {
		return nil, err
	}
	view := swap.AssembleView(s.coord.Store().Snapshot(), filter, viewer, s.coord.Policy())
	resp := dto.NewSwapViewResponse(view)
	return &resp, nil
}

func (s *swapService) Get(_ context.Context, viewer swap.Viewer, id string) (*dto.SwapRequestResponse, error) {
	r, err := s.visible(viewer, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewSwapRequestResponse(r)
	return &resp, nil
}

func (s *swapService) Create(ctx context.Context, viewer swap.Viewer, req *dto.CreateSwapRequest) (*dto.SwapRequestResponse, error) {
	if req.CounterpartyID == viewer.UserID {
		return nil, fmt.Errorf("%w: 不能与自己换班", swap.ErrInvalidRequest)
	}

	// 1. 查询双方姓名
	requester, err := s.repo.Employee.GetByID(ctx, viewer.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询员工失败", zap.Error(err))
		return nil, err
	}
	counterparty, err := s.repo.Employee.GetByID(ctx, req.CounterpartyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 对方员工不存在", swap.ErrInvalidRequest)
		}
		s.logger.Error("查询员工失败", zap.Error(err))
		return nil, err
	}

	// 2. 写入并插入集合
	saved, err := s.coord.Create(ctx, swap.SwapRequest{
		Requester:    swap.Party{UserID: requester.UserID, Name: requester.Name},
		Counterparty: swap.Party{UserID: counterparty.UserID, Name: counterparty.Name},
		GivenShift:   req.GivenShift.ToShift(),
		TakenShift:   req.TakenShift.ToShift(),
		Status:       swap.StatusPending,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("换班申请已创建",
		zap.String("swap_request_id", saved.ID),
		zap.String("requester_id", saved.Requester.UserID),
		zap.String("counterparty_id", saved.Counterparty.UserID),
	)
	resp := dto.NewSwapRequestResponse(saved)
	return &resp, nil
}

func (s *swapService) Approve(ctx context.Context, viewer swap.Viewer, id string) (*dto.SwapRequestResponse, error) {
	return s.decide(ctx, swap.ActionApprove, viewer, id)
}

func (s *swapService) Decline(ctx context.Context, viewer swap.Viewer, id string) (*dto.SwapRequestResponse, error) {
	return s.decide(ctx, swap.ActionDecline, viewer, id)
}

func (s *swapService) decide(ctx context.Context, action swap.Action, viewer swap.Viewer, id string) (*dto.SwapRequestResponse, error) {
	o := <-s.coord.Submit(ctx, action, id, viewer)
	if o.Err != nil {
		return nil, o.Err
	}
	s.logger.Info("换班申请已处理",
		zap.String("swap_request_id", id),
		zap.String("action", string(action)),
		zap.String("operator_id", viewer.UserID),
	)
	resp := dto.NewSwapRequestResponse(o.Request)
	return &resp, nil
}

func (s *swapService) Share(ctx context.Context, viewer swap.Viewer, id string) (*dto.ShareResponse, error) {
	r, err := s.visible(viewer, id)
	if err != nil {
		return nil, err
	}
	msg := swap.Compose(r).WithTitle(s.cfg.Share.Title)

	// 服务端没有系统分享能力，直接走外链通道
	link := &linkCollector{}
	if _, err := swap.Dispatch(ctx, nil, link, msg, s.cfg.Share.FallbackBaseURL); err != nil {
		return nil, err
	}
	return &dto.ShareResponse{
		Title:       msg.Title,
		Text:        msg.Text,
		FallbackURL: link.url,
	}, nil
}

func (s *swapService) Calendar(_ context.Context, viewer swap.Viewer, id string) (string, error) {
	r, err := s.visible(viewer, id)
	if err != nil {
		return "", err
	}
	loc, err := time.LoadLocation(s.cfg.Share.Timezone)
	if err != nil {
		s.logger.Warn("无效的日历时区，使用 UTC", zap.String("timezone", s.cfg.Share.Timezone))
		loc = time.UTC
	}
	return BuildSwapCalendar(r, loc, time.Now())
}

func (s *swapService) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.coord.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
		s.logger.Warn("等待换班申请处理完成超时", zap.Error(err))
	}
	s.coord.Store().Close()
	return err
}

// visible 按 ID 获取当前用户可见的申请；不可见时视为不存在
func (s *swapService) visible(viewer swap.Viewer, id string) (swap.SwapRequest, error) {
	r, ok := s.coord.Store().Get(id)
	if !ok || !swap.VisibleTo(r, viewer) {
		return swap.SwapRequest{}, swap.ErrNotFound
	}
	return r, nil
}

// linkCollector 记录外链而不打开
type linkCollector struct {
	url string
}

func (l *linkCollector) OpenLink(_ context.Context, rawURL string) error {
	l.url = rawURL
	return nil
}
