package redis

import (
	"context"
	"sort"

	"github.com/mohitkumar/flowpilot/model"
	"github.com/mohitkumar/flowpilot/persistence"
	"github.com/mohitkumar/flowpilot/util"
)

var _ persistence.WorkflowDao = new(redisWorkflowDao)

const WORKFLOW_DEF string = "WF_DEF"

type redisWorkflowDao struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.Workflow]
}

func NewRedisWorkflowDao(conf Config) *redisWorkflowDao {
	return &redisWorkflowDao{
		baseDao:        *newBaseDao(conf),
		encoderDecoder: util.NewJsonEncoderDecoder[model.Workflow](),
	}
}

func (rfd *redisWorkflowDao) Save(wf model.Workflow) error {
	key := rfd.baseDao.getNamespaceKey(WORKFLOW_DEF, wf.Id)
	ctx := context.Background()
	data, err := rfd.encoderDecoder.Encode(wf)
	if err != nil {
		return err
	}
	err = rfd.redisClient.Set(ctx, key, data, 0).Err()
	if err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rfd *redisWorkflowDao) Delete(id string) error {
	key := rfd.baseDao.getNamespaceKey(WORKFLOW_DEF, id)
	ctx := context.Background()

	err := rfd.redisClient.Del(ctx, key).Err()
	if err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rfd *redisWorkflowDao) Get(id string) (*model.Workflow, error) {
	key := rfd.baseDao.getNamespaceKey(WORKFLOW_DEF, id)
	ctx := context.Background()
	val, err := rfd.redisClient.Get(ctx, key).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	wf, err := rfd.encoderDecoder.Decode([]byte(val))
	if err != nil {
		return nil, err
	}
	return wf, nil
}

func (rfd *redisWorkflowDao) List() ([]model.Workflow, error) {
	pattern := rfd.baseDao.getNamespaceKey(WORKFLOW_DEF, "*")
	ctx := context.Background()
	var result []model.Workflow
	iter := rfd.redisClient.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		val, err := rfd.redisClient.Get(ctx, iter.Val()).Result()
		if err != nil {
			return nil, persistence.StorageLayerError{Message: err.Error()}
		}
		wf, err := rfd.encoderDecoder.Decode([]byte(val))
		if err != nil {
			return nil, err
		}
		result = append(result, *wf)
	}
	if err := iter.Err(); err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id < result[j].Id })
	return result, nil
}
