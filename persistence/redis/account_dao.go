package redis

import (
	"context"

	"github.com/mohitkumar/flowpilot/model"
	"github.com/mohitkumar/flowpilot/persistence"
	"github.com/mohitkumar/flowpilot/util"
)

var _ persistence.AccountDao = new(redisAccountDao)

const ACCOUNT string = "ACCOUNT"

type redisAccountDao struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.Account]
}

func NewRedisAccountDao(conf Config) *redisAccountDao {
	return &redisAccountDao{
		baseDao:        *newBaseDao(conf),
		encoderDecoder: util.NewJsonEncoderDecoder[model.Account](),
	}
}

func (rad *redisAccountDao) Save(account model.Account) error {
	key := rad.baseDao.getNamespaceKey(ACCOUNT)
	ctx := context.Background()
	data, err := rad.encoderDecoder.Encode(account)
	if err != nil {
		return err
	}
	if err := rad.redisClient.HSet(ctx, key, account.Id, string(data)).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rad *redisAccountDao) Delete(id string) error {
	key := rad.baseDao.getNamespaceKey(ACCOUNT)
	ctx := context.Background()
	if err := rad.redisClient.HDel(ctx, key, id).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rad *redisAccountDao) Get(id string) (*model.Account, error) {
	key := rad.baseDao.getNamespaceKey(ACCOUNT)
	ctx := context.Background()
	val, err := rad.redisClient.HGet(ctx, key, id).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rad.encoderDecoder.Decode([]byte(val))
}

func (rad *redisAccountDao) ListActiveWithWorkflow() ([]model.ActiveAccount, error) {
	key := rad.baseDao.getNamespaceKey(ACCOUNT)
	ctx := context.Background()
	rows, err := rad.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	var result []model.ActiveAccount
	for _, raw := range rows {
		account, err := rad.encoderDecoder.Decode([]byte(raw))
		if err != nil {
			return nil, err
		}
		if !account.Active || account.WorkflowId == "" {
			continue
		}
		result = append(result, model.ActiveAccount{
			AccountId:     account.Id,
			OwnerId:       account.OwnerId,
			WorkflowId:    account.WorkflowId,
			NotifyChannel: account.NotifyChannel,
		})
	}
	return result, nil
}
