package container

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "container")

// ListNode 双向链表中的节点
// 功能：表示双向链表中的一个节点，包含键值对和额外信息
// 说明：支持泛型，可以存储任意类型的值和额外信息
type ListNode[T any, E any] struct {
	parent     *List[T, E]     // 所属链表
	prev, next *ListNode[T, E] // 前驱和后继节点
	S          float64         // 键值（排队场景下为到达时间）
	Value      T               // 主要值
	Extra      E               // 额外信息
}

// String 获取节点的字符串表示
func (n *ListNode[T, E]) String() string {
	return fmt.Sprintf("Node{Key:%v, Value:%+v, Extra:%+v}", n.S, n.Value, n.Extra)
}

// InsertAfter 在节点后插入新节点
// 功能：在当前节点之后插入一个新节点
// 参数：add-要插入的新节点
// 算法说明：
// 1. 检查新节点是否已经在其他链表中
// 2. 设置新节点的父链表和前后指针
// 3. 更新当前节点和后继节点的指针，必要时更新链表尾指针
// 4. 增加链表长度计数
func (n *ListNode[T, E]) InsertAfter(add *ListNode[T, E]) {
	if add.parent != nil {
		log.Panic("insert node who already in list")
	}
	add.parent = n.parent
	add.prev = n
	add.next = n.next
	n.next = add
	if add.next != nil {
		add.next.prev = add
	} else {
		add.parent.tail = add
	}
	n.parent.length++
}

// List 双向链表
// 功能：实现一个通用的双向链表数据结构
// 说明：支持泛型，车道排队队列以它作为FIFO容器（尾部插入，头部移除）
type List[T any, E any] struct {
	ID         string          // 链表标识符
	head, tail *ListNode[T, E] // 头尾节点指针
	length     int             // 链表长度
}

// NewList 创建带标识符的空链表
func NewList[T any, E any](id string) *List[T, E] {
	return &List[T, E]{ID: id}
}

func (l *List[T, E]) String() string {
	return fmt.Sprintf("List{ID:%v}", l.ID)
}

// Values 获取双向链表中所有节点的值（按链表顺序）
func (l *List[T, E]) Values() []T {
	values := make([]T, l.length)
	for i, node := 0, l.head; node != nil; i, node = i+1, node.next {
		values[i] = node.Value
	}
	return values
}

// Len 获取双向链表长度
func (l *List[T, E]) Len() int {
	return l.length
}

// PushBack 向链表尾部插入节点
// 功能：在链表尾部添加一个新节点
// 参数：add-要插入的新节点
func (l *List[T, E]) PushBack(add *ListNode[T, E]) {
	if add.parent != nil {
		log.Panic("push back node who already in list")
	}
	add.next = nil
	add.prev = nil
	if l.tail == nil {
		add.parent = l
		l.head = add
		l.tail = add
		l.length++
	} else {
		// length++和add.parent在InsertAfter中处理
		l.tail.InsertAfter(add)
	}
}

// Remove 从链表中移除节点
// 功能：从链表中删除指定的节点
// 参数：node-要删除的节点
// 算法说明：
// 1. 检查节点是否属于当前链表
// 2. 更新前驱、后继节点的指针，必要时更新头尾指针
// 3. 清空被删除节点的指针并减少链表长度计数
func (l *List[T, E]) Remove(node *ListNode[T, E]) {
	if node.parent != l {
		log.Panic("remove node from wrong list")
	}
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	node.prev = nil
	node.next = nil
	node.parent = nil
	l.length--
}

// PopFront 移除并返回链表头部节点，链表为空时返回nil
func (l *List[T, E]) PopFront() *ListNode[T, E] {
	node := l.head
	if node != nil {
		l.Remove(node)
	}
	return node
}

// First 获取链表头部节点，链表为空则返回nil
func (l *List[T, E]) First() *ListNode[T, E] {
	return l.head
}
