package ai

import (
	"encoding/json"
	"fmt"

	"github.com/jingxin-guardian/core/internal/models"
)

// System instructions fix the assistant persona per workflow.
const (
	ExamSystemInstruction = "你是一名警务职业健康专家。"

	// ReportGenerationPrompt steers the composite appraisal. Treated as an
	// opaque configuration string by the workflows that use it.
	ReportGenerationPrompt = "你是公安机关政工部门的资深研判专家。请基于给出的民警档案数据（个人信息、体检摘要、" +
		"心理对话摘要、历史谈心谈话记录），撰写一份《警员身心动态综合研判报告》。报告须包含：一、基本情况；" +
		"二、生理健康研判；三、心理底色研判；四、思想动态与八小时外风险研判；五、综合结论与带枪资格建议。" +
		"语气务实、克制，结论明确，适合内部留档。"
)

// BuildExamPrompt formats one physical-exam analysis request. history is the
// concatenation of prior analyses and may be empty.
func BuildExamPrompt(content, history string) string {
	if history == "" {
		history = "无"
	}
	return fmt.Sprintf("【生理研判指令】\n分析以下体检数据，评估其高压勤务适岗度。\n当前数据：%s\n历史参考：%s", content, history)
}

// BuildPsychTurnInstruction addresses the officer by name and pins the
// current round so each turn re-grounds the assistant without replaying the
// whole transcript. round is 1-indexed.
func BuildPsychTurnInstruction(officerName string, round int) string {
	if officerName == "" {
		officerName = "匿名民警"
	}
	return fmt.Sprintf("你是警务心理咨询师。这是第 %d 轮对话。当前对象：%s。请以战友语气交流。第10轮输出评估报告。", round, officerName)
}

// PsychOpeningLine is the fixed seed message that starts a covert
// assessment; no AI call is made for it.
func PsychOpeningLine(officerName string) string {
	if officerName == "" {
		officerName = "伙计"
	}
	return fmt.Sprintf("嘿，%s！最近工作咋样？接处警多不多？忙归忙，咱也得聊聊，别把自己绷太紧了。最近感觉怎么样？", officerName)
}

// BuildCompositePrompt serializes the officer's full record set into one
// context block for the comprehensive report.
func BuildCompositePrompt(officer *models.PersonalInfoModel, examAnalyses, psychContents []string, talks []models.TalkRecordModel) string {
	var name, policeID, department string
	if officer != nil {
		name, policeID, department = officer.Name, officer.PoliceID, officer.Department
	}
	examsJSON, _ := json.Marshal(examAnalyses)
	psychsJSON, _ := json.Marshal(psychContents)
	talksJSON, _ := json.Marshal(talks)

	return fmt.Sprintf("民警姓名: %s\n警号: %s\n部门: %s\n体检摘要: %s\n心理对话摘要: %s\n历史谈话记录: %s",
		name, policeID, department, examsJSON, psychsJSON, talksJSON)
}

// BuildCounselOpeningPrompt asks for a counseling opening line grounded in
// the officer's latest records.
func BuildCounselOpeningPrompt(officer *models.PersonalInfoModel, latestExam *models.ExamReportModel, latestPsychContent string) string {
	officerJSON, _ := json.Marshal(officer)
	examJSON, _ := json.Marshal(latestExam)
	if latestPsychContent == "" {
		latestPsychContent = "暂无"
	}
	context := fmt.Sprintf("用户信息: %s\n最新体检: %s\n最新心理测评: %s", officerJSON, examJSON, latestPsychContent)
	return fmt.Sprintf("你是警察心理疏导员。背景信息：%s\n\n请根据用户的情况进行开场白。遵循去病理化、战术性建议的原则。", context)
}

// CounselFallbackOpener replaces the AI opening when the link is down; the
// counseling surface never shows an error to the officer.
const CounselFallbackOpener = "你好，很高兴能为你提供心理疏导。今天感觉怎么样？"
