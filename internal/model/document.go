package model

import "time"

// TopicNode is one node of the topic tree. Leaf nodes carry the ids of the
// segments grouped under the topic.
type TopicNode struct {
	Name      string      `json:"name"`
	Segments  []string    `json:"segments,omitempty"`
	Subtopics []TopicNode `json:"subtopics,omitempty"`
}

// TopicTree groups segment ids under a recursive topic hierarchy
type TopicTree struct {
	MainTopic string      `json:"main_topic"`
	Subtopics []TopicNode `json:"subtopics"`
}

// IsEmpty reports whether the tree carries no content
func (t TopicTree) IsEmpty() bool {
	return t.MainTopic == "" && len(t.Subtopics) == 0
}

// Document is the terminal artifact of the pipeline. After assembly it owns
// its segments, chains and topic tree and is treated as immutable by all
// downstream consumers.
type Document struct {
	SourceFile  string         `json:"source_file"`
	Segments    []*Segment     `json:"segments"`
	LogicChains []LogicChain   `json:"logic_chains"`
	TopicTree   TopicTree      `json:"topic_tree"`
	Metadata    map[string]int `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
}

// TotalDuration is the maximum segment end time, 0 for an empty document
func (d *Document) TotalDuration() float64 {
	var max float64
	for _, seg := range d.Segments {
		if seg.EndTime > max {
			max = seg.EndTime
		}
	}
	return max
}

// SegmentCount returns the number of segments
func (d *Document) SegmentCount() int {
	return len(d.Segments)
}

// SegmentByID returns the segment with the given id, or nil
func (d *Document) SegmentByID(id string) *Segment {
	for _, seg := range d.Segments {
		if seg.ID == id {
			return seg
		}
	}
	return nil
}

// CoreArguments returns the segments flagged as core arguments
func (d *Document) CoreArguments() []*Segment {
	var core []*Segment
	for _, seg := range d.Segments {
		if seg.IsCoreArgument {
			core = append(core, seg)
		}
	}
	return core
}
