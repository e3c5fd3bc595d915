package zone

import (
    "sync/atomic"
)

// 文档注释：快照持有者
// 背景：通过 atomic.Value 提供无锁读与整体替换；进行中的查询要么看到旧快照，要么看到新快照，不会看到半更新状态。
// 约束：只存放 *Dataset；未设置时返回空快照。
type Store struct { v atomic.Value }

// NewStore 以初始快照构建
func NewStore(ds *Dataset) *Store {
    s := &Store{}
    if ds != nil { s.Swap(ds) }
    return s
}

var emptyDataset = NewDataset(nil)

// Load 读取当前快照（读路径）
func (s *Store) Load() *Dataset {
    x := s.v.Load()
    if x == nil { return emptyDataset }
    return x.(*Dataset)
}

// Swap 替换当前快照并返回旧快照；nil 被忽略
func (s *Store) Swap(ds *Dataset) *Dataset {
    if ds == nil { return s.Load() }
    old := s.v.Swap(ds)
    if old == nil { return emptyDataset }
    return old.(*Dataset)
}
