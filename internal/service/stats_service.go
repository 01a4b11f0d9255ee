package service

import (
	"tgbot_backend/internal/model"
	"tgbot_backend/internal/repository"
)

// BotStats 后台首页的汇总数据
type BotStats struct {
	UserCount    int64         `json:"userCount"`
	MessageCount int64         `json:"messageCount"`
	CommandCount int64         `json:"commandCount"`
	GroupCount   int64         `json:"groupCount"`
	ActiveGroups []model.Group `json:"activeGroups"`
}

type StatsService struct {
	UserRepo    *repository.UserRepository
	MessageRepo *repository.MessageRepository
	GroupRepo   *repository.GroupRepository
}

func NewStatsService(userRepo *repository.UserRepository, messageRepo *repository.MessageRepository, groupRepo *repository.GroupRepository) *StatsService {
	return &StatsService{
		UserRepo:    userRepo,
		MessageRepo: messageRepo,
		GroupRepo:   groupRepo,
	}
}

func (s *StatsService) Collect() (*BotStats, error) {
	userCount, err := s.UserRepo.Count()
	if err != nil {
		return nil, err
	}
	messageCount, err := s.MessageRepo.Count()
	if err != nil {
		return nil, err
	}
	commandCount, err := s.MessageRepo.CountCommands()
	if err != nil {
		return nil, err
	}
	groupCount, err := s.GroupRepo.Count()
	if err != nil {
		return nil, err
	}
	activeGroups, err := s.GroupRepo.ListActive(5)
	if err != nil {
		return nil, err
	}

	return &BotStats{
		UserCount:    userCount,
		MessageCount: messageCount,
		CommandCount: commandCount,
		GroupCount:   groupCount,
		ActiveGroups: activeGroups,
	}, nil
}
