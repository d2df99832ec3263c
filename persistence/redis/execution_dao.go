package redis

import (
	"context"
	"time"

	rd "github.com/go-redis/redis/v9"
	"github.com/mohitkumar/flowpilot/model"
	"github.com/mohitkumar/flowpilot/persistence"
	"github.com/mohitkumar/flowpilot/util"
)

var _ persistence.ExecutionDao = new(redisExecutionDao)

const EXECUTION string = "EXECUTION"
const EXECUTION_RUNNING_IDX string = "EXECUTION_RUNNING"

type redisExecutionDao struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.Execution]
}

func NewRedisExecutionDao(conf Config) *redisExecutionDao {
	return &redisExecutionDao{
		baseDao:        *newBaseDao(conf),
		encoderDecoder: util.NewJsonEncoderDecoder[model.Execution](),
	}
}

func (red *redisExecutionDao) Create(execution model.Execution) error {
	key := red.baseDao.getNamespaceKey(EXECUTION, execution.Id)
	idxKey := red.baseDao.getNamespaceKey(EXECUTION_RUNNING_IDX)
	ctx := context.Background()
	data, err := red.encoderDecoder.Encode(execution)
	if err != nil {
		return err
	}
	_, err = red.redisClient.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
		pipe.Set(ctx, key, data, 0)
		pipe.HSet(ctx, idxKey, execution.DedupKey(), execution.Id)
		return nil
	})
	if err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (red *redisExecutionDao) Get(id string) (*model.Execution, error) {
	key := red.baseDao.getNamespaceKey(EXECUTION, id)
	ctx := context.Background()
	val, err := red.redisClient.Get(ctx, key).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return red.encoderDecoder.Decode([]byte(val))
}

func (red *redisExecutionDao) FindRunning(workflowId string, ownerId string, accountId string) (*model.Execution, error) {
	idxKey := red.baseDao.getNamespaceKey(EXECUTION_RUNNING_IDX)
	ctx := context.Background()
	execId, err := red.redisClient.HGet(ctx, idxKey, model.ExecutionDedupKey(workflowId, ownerId, accountId)).Result()
	if err == rd.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	execution, err := red.Get(execId)
	if err != nil {
		return nil, err
	}
	if execution.Status != model.EXECUTION_RUNNING {
		// stale index entry left behind by a crashed finisher
		red.redisClient.HDel(ctx, idxKey, execution.DedupKey())
		return nil, nil
	}
	return execution, nil
}

// Finish updates the row under a WATCH transaction so two completion paths
// can not both finalize the same run.
func (red *redisExecutionDao) Finish(id string, status model.ExecutionStatus, errorMessage string, log []model.LogEntry) (bool, error) {
	key := red.baseDao.getNamespaceKey(EXECUTION, id)
	idxKey := red.baseDao.getNamespaceKey(EXECUTION_RUNNING_IDX)
	ctx := context.Background()
	updated := false
	err := red.redisClient.Watch(ctx, func(tx *rd.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err != nil {
			return err
		}
		execution, err := red.encoderDecoder.Decode([]byte(val))
		if err != nil {
			return err
		}
		if execution.Status != model.EXECUTION_RUNNING {
			return nil
		}
		execution.Status = status
		execution.Error = errorMessage
		execution.Log = log
		execution.FinishedAt = time.Now()
		data, err := red.encoderDecoder.Encode(*execution)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.HDel(ctx, idxKey, execution.DedupKey())
			return nil
		})
		if err == nil {
			updated = true
		}
		return err
	}, key)
	if err != nil {
		return false, persistence.StorageLayerError{Message: err.Error()}
	}
	return updated, nil
}
