package domain

// Operator-facing messages. The admin UI, JSON API, and CLI show these verbatim.
const (
	MsgFillAllFields     = "请填写所有字段"
	MsgUpdated           = "修改成功"
	MsgAdded             = "添加成功"
	MsgDeleted           = "已删除"
	MsgExported          = "导出成功"
	MsgImportedFormat    = "成功导入 %d 条经文"
	MsgBadFileFormat     = "文件格式错误"
	MsgParseFailed       = "解析失败"
	MsgPasswordTooShort  = "密码至少%d位"
	MsgPasswordTooLong   = "密码不能超过72字节"
	MsgPasswordUpdated   = "密码已更新"
	MsgCleared           = "数据已清空"
	MsgWrongPassword     = "密码错误"
	MsgCopied            = "已复制到剪贴板"
	MsgLoginRequired     = "请先登录"
	MsgImportInProgress  = "正在导入，请稍候"
	MsgAddFormTitle      = "添加新经文"
	MsgEditFormTitle     = "编辑经文"
	MsgClearConfirmation = "确定要清空所有经文数据吗？此操作不可恢复！"
	MsgDeleteConfirm     = "确定删除这条经文吗？"
	MsgNoData            = "暂无数据"
	ShareTitle           = "每日经文"
)

// Admin page titles keyed by page name.
var PageTitles = map[string]string{
	"dashboard": "概览",
	"verses":    "经文列表",
	"add":       "添加经文",
	"edit":      MsgEditFormTitle,
	"settings":  "设置",
}
