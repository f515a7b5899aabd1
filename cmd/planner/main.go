package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/studyplan-backend/internal/app"
	"github.com/yungbote/studyplan-backend/internal/modules/studyplan"
	"github.com/yungbote/studyplan-backend/internal/modules/studyplan/completion"
	"github.com/yungbote/studyplan-backend/internal/platform/logger"
)

const planFileName = "plano_estudos.json"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("planner", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		p        studyplan.Profile
		weeks    int
		model    string
		tokenCap int
	)
	fs.StringVar(&p.LearningStyle, "estilo", "balanceado", "estilo de aprendizado (teorico, pratico, balanceado, intensivo)")
	fs.StringVar(&p.DifficultyTolerance, "tolerancia", "media", "tolerância a dificuldade (baixa, media, alta)")
	fs.StringVar(&p.Focus, "foco", "media", "nível de foco (baixa, media, alta ou curto, medio, longo)")
	fs.StringVar(&p.Resilience, "resiliencia", "media", "resiliência de estudo (baixa, media, alta)")
	fs.StringVar(&p.Knowledge, "conhecimento", "iniciante", "conhecimento do tema (iniciante, intermediario, avancado)")
	fs.IntVar(&p.WeeklyHours, "horas", 7, "horas semanais disponíveis")
	fs.StringVar(&p.Objective, "objetivo", "aprendizado_profundo", "objetivo (prova, projeto, habito, aprendizado_profundo)")
	fs.StringVar(&p.Topic, "tema", "", "tema de estudo")
	fs.IntVar(&weeks, "semanas", 4, "número de semanas (0 deixa o modelo decidir)")
	fs.StringVar(&model, "model", "", "modelo (padrão: OPENAI_MODEL)")
	fs.IntVar(&tokenCap, "max-tokens", 0, "limite inicial de tokens (padrão: OPENAI_MAX_TOKENS)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	p = p.Normalized()
	if err := p.Validate(); err != nil {
		fmt.Fprintf(stderr, "perfil: %v\n", err)
		return 2
	}
	if weeks < 0 {
		fmt.Fprintf(stderr, "semanas inválido: %d\n", weeks)
		return 2
	}

	class := studyplan.Classify(p)
	sk, err := studyplan.BuildSkeleton(class.Label, p.Objective, p.Topic)
	if err != nil {
		fmt.Fprintf(stderr, "esqueleto: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Perfil: %s (%.0fh/semana)\n", sk.Label, sk.WeeklyHours)

	orch, store := app.NewOrchestrator(cfg, log, nil)
	hours := float64(p.WeeklyHours)
	raw, err := orch.FetchPlan(ctx, completion.FetchRequest{
		Skeleton:    sk,
		Weeks:       weeks,
		WeeklyHours: &hours,
		Model:       model,
		TokenCap:    tokenCap,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Falha ao gerar plano: %v\n", err)
		var mal *completion.MalformedOutputError
		if errors.As(err, &mal) && mal.ArtifactPath != "" {
			fmt.Fprintf(stderr, "Resposta salva em %s\n", mal.ArtifactPath)
		}
		fmt.Fprintln(stderr, "Nenhum plano local foi gerado: não há fallback sem o modelo.")
		return 1
	}
	raw.EnsureTaskStatus()
	printBoard(stdout, studyplan.WeekCards(raw))

	// The file keeps the plan as the model wrote it, plus default task statuses.
	out, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		fmt.Fprintf(stderr, "encode plan: %v\n", err)
		return 1
	}
	path, err := store.Save(planFileName, out)
	if err != nil {
		fmt.Fprintf(stderr, "save plan: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "\nPlano salvo em %s (%d tarefas)\n", path, raw.TaskCount())
	return 0
}

func printBoard(w io.Writer, board studyplan.Board) {
	if board.Topic != "" {
		fmt.Fprintf(w, "Tema: %s\n", board.Topic)
	}
	for i, wk := range board.Weeks {
		n := i + 1
		if wk.Week != nil {
			n = *wk.Week
		}
		fmt.Fprintf(w, "\nSemana %d", n)
		if wk.Objective != "" {
			fmt.Fprintf(w, ": %s", wk.Objective)
		}
		fmt.Fprintln(w)
		for _, c := range wk.Cards {
			line := fmt.Sprintf("  [%s] %s", c.Type, c.Title)
			if c.Hours != "" {
				line += " (" + c.Hours + ")"
			}
			fmt.Fprintln(w, line)
		}
	}
}
