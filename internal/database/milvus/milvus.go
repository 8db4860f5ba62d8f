package milvus

import (
	"context"
	"fmt"
	"sync"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/bbookman/mom0mind/internal/config"
)

var (
	instance *Client
	once     sync.Once
	initErr  error
)

// 记忆集合的字段名。Schema 是固定的，不再从配置文件读取。
const (
	FieldID        = "id"
	FieldUserID    = "user_id"
	FieldText      = "text"
	FieldSource    = "source"
	FieldCreatedAt = "created_at"
	FieldEmbedding = "embedding"

	maxTextLength = 4096
	maxIDLength   = 64
)

// Client 包含了 Milvus 客户端实例和相关配置。
type Client struct {
	Client client.Client            // Milvus 客户端实例。
	Config config.VectorStoreConfig // 向量存储配置。
}

// GetClient 使用单例模式创建并返回一个 Milvus 客户端实例。
func GetClient(ctx context.Context, cfg config.VectorStoreConfig) (*Client, error) {
	once.Do(func() {
		c, err := client.NewClient(ctx, client.Config{Address: cfg.Address()})
		if err != nil {
			initErr = fmt.Errorf("无法连接到 Milvus: %w", err)
			return
		}
		instance = &Client{Client: c, Config: cfg}
	})
	return instance, initErr
}

// Close 安全地关闭与 Milvus 的连接。
func (c *Client) Close() {
	if c.Client != nil {
		c.Client.Close()
	}
}

// HealthCheck 检查 Milvus 连接的健康状况。
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.Client == nil {
		return fmt.Errorf("milvus client is nil")
	}
	if _, err := c.Client.ListCollections(ctx); err != nil {
		return fmt.Errorf("milvus health check failed: %w", err)
	}
	return nil
}

// EnsureCollection 确保记忆集合存在，不存在时按固定 Schema 创建并建立索引。
func (c *Client) EnsureCollection(ctx context.Context) error {
	collName := c.Config.CollectionName
	exists, err := c.Client.HasCollection(ctx, collName)
	if err != nil {
		return fmt.Errorf("检查集合是否存在时出错: %w", err)
	}

	if !exists {
		schema := entity.NewSchema().
			WithName(collName).
			WithDescription("extracted user memories").
			WithField(entity.NewField().WithName(FieldID).
				WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxIDLength).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName(FieldUserID).
				WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxIDLength)).
			WithField(entity.NewField().WithName(FieldText).
				WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxTextLength)).
			WithField(entity.NewField().WithName(FieldSource).
				WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxTextLength)).
			WithField(entity.NewField().WithName(FieldCreatedAt).
				WithDataType(entity.FieldTypeInt64)).
			WithField(entity.NewField().WithName(FieldEmbedding).
				WithDataType(entity.FieldTypeFloatVector).WithDim(int64(c.Config.EmbeddingModelDims)))

		if err := c.Client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("创建集合失败: %w", err)
		}

		idx, err := entity.NewIndexIvfFlat(entity.L2, 128)
		if err != nil {
			return fmt.Errorf("构建索引失败: %w", err)
		}
		if err := c.Client.CreateIndex(ctx, collName, FieldEmbedding, idx, false); err != nil {
			return fmt.Errorf("为字段 '%s' 创建索引失败: %w", FieldEmbedding, err)
		}
	}

	if err := c.Client.LoadCollection(ctx, collName, false); err != nil {
		return fmt.Errorf("加载 Milvus 集合 '%s' 失败: %w", collName, err)
	}
	return nil
}

// Insert 向记忆集合写入一条记录。
func (c *Client) Insert(ctx context.Context, id, userID, text, source string, createdAt int64, vector []float32) error {
	idCol := entity.NewColumnVarChar(FieldID, []string{id})
	userCol := entity.NewColumnVarChar(FieldUserID, []string{userID})
	textCol := entity.NewColumnVarChar(FieldText, []string{text})
	sourceCol := entity.NewColumnVarChar(FieldSource, []string{source})
	createdCol := entity.NewColumnInt64(FieldCreatedAt, []int64{createdAt})
	vectorCol := entity.NewColumnFloatVector(FieldEmbedding, c.Config.EmbeddingModelDims, [][]float32{vector})

	_, err := c.Client.Insert(ctx, c.Config.CollectionName, "", idCol, userCol, textCol, sourceCol, createdCol, vectorCol)
	if err != nil {
		return fmt.Errorf("failed to insert data into Milvus: %w", err)
	}
	return nil
}

// Search 在记忆集合中执行向量相似度搜索，可按 user_id 过滤。
func (c *Client) Search(ctx context.Context, userID string, topK int, vector []float32) ([]client.SearchResult, error) {
	collName := c.Config.CollectionName

	sp, _ := entity.NewIndexIvfFlatSearchParam(10)
	expr := ""
	if userID != "" {
		expr = fmt.Sprintf("%s == \"%s\"", FieldUserID, userID)
	}

	results, err := c.Client.Search(
		ctx,
		collName,
		nil,
		expr,
		[]string{FieldUserID, FieldText, FieldSource, FieldCreatedAt},
		[]entity.Vector{entity.FloatVector(vector)},
		FieldEmbedding,
		entity.L2,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("向量搜索失败: %w", err)
	}
	return results, nil
}

// QueryByUser 按 user_id 查询全部记忆记录，不做向量检索。
func (c *Client) QueryByUser(ctx context.Context, userID string) (client.ResultSet, error) {
	expr := fmt.Sprintf("%s == \"%s\"", FieldUserID, userID)
	rs, err := c.Client.Query(
		ctx,
		c.Config.CollectionName,
		nil,
		expr,
		[]string{FieldID, FieldUserID, FieldText, FieldSource, FieldCreatedAt},
	)
	if err != nil {
		return nil, fmt.Errorf("按用户查询失败: %w", err)
	}
	return rs, nil
}

// DeleteByUser 按 user_id 删除记忆记录。
func (c *Client) DeleteByUser(ctx context.Context, userID string) error {
	expr := fmt.Sprintf("%s == \"%s\"", FieldUserID, userID)
	if err := c.Client.Delete(ctx, c.Config.CollectionName, "", expr); err != nil {
		return fmt.Errorf("failed to delete data from Milvus: %w", err)
	}
	return nil
}

// Flush 手动触发一次刷新操作，将内存中的数据写入磁盘。
func (c *Client) Flush(ctx context.Context) error {
	if err := c.Client.Flush(ctx, c.Config.CollectionName, false); err != nil {
		return fmt.Errorf("刷新集合 '%s' 失败: %w", c.Config.CollectionName, err)
	}
	return nil
}
