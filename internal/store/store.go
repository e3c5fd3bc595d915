// 包 store：区域数据集持久化边界（由外部管理工具写入，核心只读取）
package store

import (
	"context"
	"errors"
)

var ErrNoDataset = errors.New("no zone dataset stored")

// Repository：原始数据集仓库
// 约束：Load 返回最新版本的原始字节，不做规范化；Save 写入新版本，不修改既有版本
type Repository interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, raw []byte) error
}
