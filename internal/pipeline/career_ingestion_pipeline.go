package pipeline

import (
	"context"
	"errors"
	"time"

	"i4e-backend/internal/domain/career"
	"i4e-backend/internal/pkg/logger"
)

const (
	EventCareerIngested = "career_ingested"
	EventCareerFailed   = "career_failed"
)

// CareerSink persists one assembled career. It is the create operation the
// admin API uses.
type CareerSink interface {
	CreateCareer(ctx context.Context, d career.Details, userID int64) (int64, error)
}

type ThumbnailFetcher interface {
	Thumbnail(ctx context.Context, link string) (string, error)
}

type ProgressEvent struct {
	Type       string `json:"type"`
	UploadID   string `json:"uploadId"`
	UserID     int64  `json:"userId"`
	Row        int    `json:"row"`
	CareerID   int64  `json:"careerId,omitempty"`
	CareerName string `json:"careerName"`
	Unresolved int    `json:"unresolved"`
	Error      string `json:"error,omitempty"`
}

type ProgressNotifier interface {
	Notify(ev ProgressEvent)
}

// RowResult is the per-row report returned to the uploader. Keys follow the
// sheet headers.
type RowResult struct {
	Row              int                       `json:"row"`
	CareerID         int64                     `json:"careerId,omitempty"`
	CareerName       string                    `json:"jobs"`
	CareerCluster    *ResolvedRef              `json:"career_cluster"`
	PageContent      string                    `json:"page_content"`
	Description      string                    `json:"description"`
	MetaTitle        string                    `json:"meta_title"`
	MetaDescription  string                    `json:"meta_description"`
	ShortDescription string                    `json:"shortDescription"`
	AlsoKnownAs      []string                  `json:"also_known_as"`
	Strengths        []string                  `json:"strengths"`
	Weakness         []string                  `json:"weakness"`
	Keywords         []string                  `json:"keywords"`
	Progression      []career.ProgressionStep  `json:"career_progression_path"`
	Youtube          []career.YoutubeLink      `json:"youtube"`
	Responsibilities []career.TitleDescription `json:"responsibilities"`
	WorkContext      []career.TitleDescription `json:"work_context"`
	Earnings         []career.ExpectedRange    `json:"earnings"`
	AvgSalary        string                    `json:"avgSalary"`
	EducationPath    []career.EducationPath    `json:"education_path"`
	Colleges         []ResolvedRef             `json:"colleges"`
	Companies        []ResolvedRef             `json:"companies"`
	Exams            []ResolvedRef             `json:"exams"`
	Personalities    []ResolvedRef             `json:"personalities"`
	SkillCategories  []ResolvedRef             `json:"skill_categories"`
	Skills           []ResolvedRef             `json:"skills"`
	Unresolved       []ResolvedRef             `json:"unresolved"`
	Error            string                    `json:"error,omitempty"`
}

type IngestRequest struct {
	UploadID string
	UserID   int64
	Data     []byte
}

// CareerIngestionPipeline turns an uploaded sheet into careers: read, parse,
// resolve reference names, then create one career per row.
type CareerIngestionPipeline struct {
	creator  EntityCreator
	sink     CareerSink
	thumbs   ThumbnailFetcher
	notifier ProgressNotifier
	workers  int

	log *logger.Logger
}

func NewCareerIngestionPipeline(
	creator EntityCreator,
	sink CareerSink,
	thumbs ThumbnailFetcher,
	notifier ProgressNotifier,
	workers int,
	log *logger.Logger,
) *CareerIngestionPipeline {
	if log == nil {
		log = logger.Nop()
	}
	if workers <= 0 {
		workers = 1
	}
	return &CareerIngestionPipeline{
		creator:  creator,
		sink:     sink,
		thumbs:   thumbs,
		notifier: notifier,
		workers:  workers,
		log:      log,
	}
}

// Run processes every data row and returns their reports in sheet order.
// The first persistence failure cancels the rows still pending and is
// returned as a *RowError together with the reports of the rows that
// finished.
func (p *CareerIngestionPipeline) Run(ctx context.Context, req IngestRequest) ([]RowResult, error) {
	start := time.Now()
	log := p.log.With("pipeline", "career_ingestion", "upload_id", req.UploadID, "user_id", req.UserID)

	rows, err := ReadSheet(req.Data)
	if err != nil {
		log.Warn("sheet rejected", "err", err)
		return nil, err
	}
	log.Info("started", "rows", len(rows), "workers", p.workers)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	resolver := NewEntityResolver(p.creator)
	results := make([]RowResult, len(rows))
	rowErrs := make([]error, len(rows))
	finished := make([]bool, len(rows))

	pool := NewWorkerPool(p.workers, len(rows))
	out := pool.Run(runCtx)
	for i := range rows {
		pool.Submit(func(ctx context.Context) error {
			res, err := p.processRow(ctx, resolver, rows[i], req, log)
			results[i] = res
			if err != nil {
				rowErrs[i] = err
				cancel()
				return err
			}
			finished[i] = true
			return nil
		})
	}
	pool.Close()

	failed := 0
	for r := range out {
		if r.Err != nil {
			failed++
		}
	}

	done := make([]RowResult, 0, len(rows))
	for i := range results {
		if finished[i] {
			done = append(done, results[i])
		}
	}

	if err := firstRowError(rowErrs); err != nil {
		log.Error("aborted", "err", err, "completed", len(done), "failed", failed, "duration", time.Since(start))
		return done, err
	}
	if err := ctx.Err(); err != nil {
		log.Warn("cancelled", "completed", len(done), "duration", time.Since(start))
		return done, err
	}

	log.Info("finished", "completed", len(done), "duration", time.Since(start))
	return done, nil
}

// firstRowError prefers the lowest row that failed on its own over rows that
// only saw the cancellation.
func firstRowError(errs []error) error {
	var fallback error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) {
			if fallback == nil {
				fallback = err
			}
			continue
		}
		return err
	}
	return fallback
}

func (p *CareerIngestionPipeline) processRow(ctx context.Context, resolver *EntityResolver, raw RawRow, req IngestRequest, log *logger.Logger) (RowResult, error) {
	rowStart := time.Now()
	parsed := ParseRow(raw)
	res := assemble(raw.Number, parsed)

	if res.CareerName == "" {
		res.Error = "missing " + HeaderJobs
		p.notify(EventCareerFailed, req, res)
		log.Warn("row skipped", "row", raw.Number, "reason", res.Error)
		return res, nil
	}

	if name := parsed.Text(HeaderCareerCluster); name != "" {
		ref := resolver.Resolve(ctx, career.KindCareerCategory, name, nil, req.UserID)
		res.CareerCluster = &ref
	}
	res.Personalities = resolver.ResolveAll(ctx, career.KindPersonality, parsed.List(HeaderPersonalities), req.UserID)
	res.Companies = resolver.ResolveAll(ctx, career.KindCompany, parsed.List(HeaderCompanies), req.UserID)
	res.Exams = resolver.ResolveAll(ctx, career.KindExam, parsed.List(HeaderExams), req.UserID)

	colleges := parsed[HeaderColleges].Colleges
	names := make([]string, 0, len(colleges))
	for _, c := range colleges {
		names = append(names, c.Name)
	}
	res.Colleges = resolver.ResolveAll(ctx, career.KindInstitute, names, req.UserID)
	res.SkillCategories, res.Skills = resolver.ResolveSkills(ctx, parsed[HeaderSkills].Skills, req.UserID)

	if err := ctx.Err(); err != nil {
		return res, &RowError{Row: raw.Number, CareerName: res.CareerName, Err: err}
	}

	cluster := []ResolvedRef{}
	if res.CareerCluster != nil {
		cluster = append(cluster, *res.CareerCluster)
	}
	res.Unresolved = unresolved(cluster, res.Personalities, res.Companies, res.Exams, res.Colleges, res.SkillCategories, res.Skills)

	p.enrichThumbnails(ctx, res.Youtube, log)

	careerID, err := p.sink.CreateCareer(ctx, buildDetails(res), req.UserID)
	if err != nil {
		res.Error = err.Error()
		p.notify(EventCareerFailed, req, res)
		return res, &RowError{Row: raw.Number, CareerName: res.CareerName, Err: err}
	}
	res.CareerID = careerID
	p.notify(EventCareerIngested, req, res)

	log.Info("row ingested",
		"row", raw.Number,
		"career_id", careerID,
		"unresolved", len(res.Unresolved),
		"duration", time.Since(rowStart),
	)
	return res, nil
}

func assemble(rowNumber int, parsed ParsedRow) RowResult {
	earnings := parsed[HeaderEarnings].Ranges
	return RowResult{
		Row:              rowNumber,
		CareerName:       parsed.Text(HeaderJobs),
		PageContent:      parsed.Text(HeaderPageContent),
		Description:      parsed.Text(HeaderDescription),
		MetaTitle:        parsed.Text(HeaderMetaTitle),
		MetaDescription:  parsed.Text(HeaderMetaDescription),
		ShortDescription: parsed.Text(HeaderShortDescription),
		AlsoKnownAs:      parsed.List(HeaderAlsoKnownAs),
		Strengths:        parsed.List(HeaderStrengths),
		Weakness:         parsed.List(HeaderWeakness),
		Keywords:         parsed.List(HeaderKeywords),
		Progression:      parsed[HeaderProgression].Progression,
		Youtube:          parsed[HeaderYoutube].Links,
		Responsibilities: parsed[HeaderResponsibilities].Pairs,
		WorkContext:      parsed[HeaderWorkContext].Pairs,
		Earnings:         earnings,
		AvgSalary:        AverageSalary(earnings),
		EducationPath:    parsed[HeaderEducationPath].Paths,
		Colleges:         []ResolvedRef{},
		Companies:        []ResolvedRef{},
		Exams:            []ResolvedRef{},
		Personalities:    []ResolvedRef{},
		SkillCategories:  []ResolvedRef{},
		Skills:           []ResolvedRef{},
		Unresolved:       []ResolvedRef{},
	}
}

func buildDetails(res RowResult) career.Details {
	var categoryID *int64
	if res.CareerCluster != nil {
		categoryID = res.CareerCluster.ID
	}
	return career.Details{
		CareerName:       res.CareerName,
		CareerCategoryID: categoryID,
		MetaTitle:        res.MetaTitle,
		MetaDescription:  res.MetaDescription,
		ShortDescription: res.ShortDescription,
		AvgSalary:        res.AvgSalary,
		Overview:         res.PageContent,
		JobTitle:         res.CareerName,
		Description:      res.Description,
		Strength:         res.Strengths,
		Weakness:         res.Weakness,
		OtherNames:       res.AlsoKnownAs,
		Progression:      res.Progression,
		ExpectedRange:    res.Earnings,
		Responsibility:   res.Responsibilities,
		WorkContext:      res.WorkContext,
		YoutubeLink:      res.Youtube,
		EducationPath:    res.EducationPath,
		CareerSkillIDs:   IDs(res.Skills),
		InstituteIDs:     IDs(res.Colleges),
		ExamIDs:          IDs(res.Exams),
		CompanyIDs:       IDs(res.Companies),
		PersonalityIDs:   IDs(res.Personalities),
	}
}

func (p *CareerIngestionPipeline) enrichThumbnails(ctx context.Context, links []career.YoutubeLink, log *logger.Logger) {
	if p.thumbs == nil {
		return
	}
	for i := range links {
		img, err := p.thumbs.Thumbnail(ctx, links[i].Link)
		if err != nil || img == "" {
			log.Debug("thumbnail unavailable", "link", links[i].Link, "err", err)
			continue
		}
		links[i].Image = &img
	}
}

func (p *CareerIngestionPipeline) notify(eventType string, req IngestRequest, res RowResult) {
	if p.notifier == nil {
		return
	}
	p.notifier.Notify(ProgressEvent{
		Type:       eventType,
		UploadID:   req.UploadID,
		UserID:     req.UserID,
		Row:        res.Row,
		CareerID:   res.CareerID,
		CareerName: res.CareerName,
		Unresolved: len(res.Unresolved),
		Error:      res.Error,
	})
}
