package errors

import "errors"

// ErrRevisionConflict 修订创建冲突：同一部门的并发提交争用了同一个
// 修订号，事务已回滚，调用方可重试
var ErrRevisionConflict = errors.New("revision number conflict, please retry")
