package service

import (
	"sort"
	"time"

	"github.com/example/techblog-server/internal/model"
	"github.com/example/techblog-server/internal/model/dto"
)

// buildCommentForest 把平面评论列表组装成评论树（迭代实现，不递归）。
// 父评论不在列表中的节点提升为顶层（父评论对当前查看者不可见或已删除）。
// 兄弟节点按 CreatedAt DESC, ID DESC 排序；ReplyCount 为可见直接回复数，
// 在任何预览截断之前计算。maxDepth > 0 时超出层级的节点拍平到
// 最深允许的祖先下。
func buildCommentForest(comments []*model.Comment, maxDepth int) []*dto.CommentNode {
	if len(comments) == 0 {
		return []*dto.CommentNode{}
	}

	sorted := make([]*model.Comment, len(comments))
	copy(sorted, comments)
	sortCommentsDesc(sorted)

	nodes := make(map[int64]*dto.CommentNode, len(sorted))
	for _, c := range sorted {
		nodes[c.ID] = commentToNode(c)
	}

	// 按排序后的顺序挂接，兄弟列表自然有序
	var roots []*dto.CommentNode
	for _, c := range sorted {
		node := nodes[c.ID]
		if c.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*c.ParentID]
		if !ok {
			// 孤儿提升
			roots = append(roots, node)
			continue
		}
		parent.Replies = append(parent.Replies, node)
		parent.ReplyCount++
	}

	if roots == nil {
		roots = []*dto.CommentNode{}
	}

	flattenBeyondDepth(roots, maxDepth)

	return roots
}

// flattenBeyondDepth 把超过 maxDepth 层的子树拍平到第 maxDepth 层节点下。
// maxDepth <= 0 表示不限制。显式栈遍历。
func flattenBeyondDepth(roots []*dto.CommentNode, maxDepth int) {
	if maxDepth <= 0 {
		return
	}

	type frame struct {
		node  *dto.CommentNode
		depth int
	}

	for _, root := range roots {
		stack := []frame{{root, 1}}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if f.depth == maxDepth {
				if len(f.node.Replies) == 0 {
					continue
				}
				// 收集整棵子树为平面列表
				var flat []*dto.CommentNode
				pending := append([]*dto.CommentNode{}, f.node.Replies...)
				for len(pending) > 0 {
					n := pending[len(pending)-1]
					pending = pending[:len(pending)-1]
					flat = append(flat, n)
					pending = append(pending, n.Replies...)
					n.Replies = nil
				}
				sortNodesDesc(flat)
				f.node.Replies = flat
				continue
			}

			for _, child := range f.node.Replies {
				stack = append(stack, frame{child, f.depth + 1})
			}
		}
	}
}

// paginateRoots 对顶层评论分页
func paginateRoots(roots []*dto.CommentNode, page, pageSize int) (items []*dto.CommentNode, total int, hasMore bool, nextPage int) {
	total = len(roots)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return []*dto.CommentNode{}, total, false, page
	}

	start := (page - 1) * pageSize
	if start >= total {
		return []*dto.CommentNode{}, total, false, page
	}

	end := start + pageSize
	if end > total {
		end = total
	}

	items = roots[start:end]
	hasMore = end < total
	nextPage = page
	if hasMore {
		nextPage = page + 1
	}
	return items, total, hasMore, nextPage
}

// truncateReplies 对每一层的回复列表应用预览数量上限（迭代实现）。
// ReplyCount 不变，客户端据此决定是否请求回复分页接口。
func truncateReplies(nodes []*dto.CommentNode, previewSize int) {
	if previewSize < 0 {
		return
	}

	stack := append([]*dto.CommentNode{}, nodes...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(node.Replies) > previewSize {
			node.Replies = node.Replies[:previewSize]
		}
		stack = append(stack, node.Replies...)
	}
}

func commentToNode(c *model.Comment) *dto.CommentNode {
	return &dto.CommentNode{
		ID:         c.ID,
		PostID:     c.PostID,
		ParentID:   c.ParentID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Content:    c.Content,
		IsApproved: c.IsApproved,
		CreatedAt:  c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func sortCommentsDesc(comments []*model.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.After(comments[j].CreatedAt)
		}
		return comments[i].ID > comments[j].ID
	})
}

func sortNodesDesc(nodes []*dto.CommentNode) {
	// CreatedAt 为统一的 UTC RFC3339 字符串，字典序即时间序
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].CreatedAt != nodes[j].CreatedAt {
			return nodes[i].CreatedAt > nodes[j].CreatedAt
		}
		return nodes[i].ID > nodes[j].ID
	})
}
