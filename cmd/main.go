package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/cultivemed/api-pacientes/internal/auth"
	"github.com/cultivemed/api-pacientes/internal/carrinho"
	"github.com/cultivemed/api-pacientes/internal/comentario"
	"github.com/cultivemed/api-pacientes/internal/lead"
	"github.com/cultivemed/api-pacientes/internal/metrics"
	"github.com/cultivemed/api-pacientes/internal/notificacao"
	"github.com/cultivemed/api-pacientes/internal/permissao"
	"github.com/cultivemed/api-pacientes/internal/usuario"
	"github.com/cultivemed/api-pacientes/internal/utils/db"
)

func main() {
	godotenv.Load()

	database, err := db.GetDB()
	if err != nil {
		log.Fatal("Erro ao conectar no banco:", err)
	}

	if err := database.AutoMigrate(
		&usuario.Usuario{},
		&lead.Lead{},
		&comentario.Comentario{},
		&carrinho.Carrinho{},
	); err != nil {
		log.Fatal("Erro no AutoMigrate:", err)
	}

	contas := usuario.NovasContas(database)

	// Fila de notificações: sem RABBITMQ_HOST os avisos vão para o log.
	var despachante notificacao.Dispatcher = notificacao.RegistroLog{}
	if host := os.Getenv("RABBITMQ_HOST"); host != "" {
		rabbit, err := notificacao.NewRabbitMQ(
			os.Getenv("RABBITMQ_USER"),
			os.Getenv("RABBITMQ_PASS"),
			host,
			os.Getenv("RABBITMQ_PORT"),
		)
		if err != nil {
			log.Fatal("Erro ao conectar no RabbitMQ:", err)
		}
		defer rabbit.Conn.Close()
		defer rabbit.Ch.Close()

		despachante = notificacao.NewProducer(rabbit.Ch)

		smtpPort := 587
		mailSender := notificacao.NewEmailSender(
			os.Getenv("MAIL_HOST"), smtpPort, os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
		)
		worker := notificacao.NewWorker(rabbit.Ch, contas, mailSender, notificacao.NewWhatsAppClient())
		go worker.Start(notificacao.QueueName)
	}

	// Serviços e handlers
	usuarioHandler := usuario.NewHandler(database)
	leadService := lead.NewService(database, lead.NewRepository(), despachante)
	leadHandler := lead.NewHandler(leadService)
	comentarioHandler := comentario.NewHandler(database, leadService)
	carrinhoHandler := carrinho.NewHandler(carrinho.NewService(database, carrinho.NewRepository()))

	resolver := auth.NovoResolver(contas)

	equipe := permissao.Middleware(permissao.Papeis(
		auth.PapelConsultor, auth.PapelMedico, auth.PapelAdmin,
	))
	aprovadores := permissao.Middleware(permissao.Papeis(
		auth.PapelMedico, auth.PapelAdmin,
	))

	r := mux.NewRouter()
	r.Use(metrics.Middleware)
	r.Use(resolver.Middleware)

	// Contas
	r.HandleFunc("/usuarios", usuarioHandler.Registrar).Methods("POST")
	r.HandleFunc("/login", usuarioHandler.Login).Methods("POST")
	r.HandleFunc("/usuarios/redefinir-senha", usuarioHandler.RedefinirSenha).Methods("POST")
	r.HandleFunc("/usuarios", usuarioHandler.Listar).Methods("GET")
	r.HandleFunc("/usuarios/{id}", usuarioHandler.BuscarPorID).Methods("GET")
	r.HandleFunc("/usuarios/{id}", usuarioHandler.Atualizar).Methods("PUT")
	r.HandleFunc("/usuarios/{id}", usuarioHandler.Deletar).Methods("DELETE")

	// Leads
	r.HandleFunc("/leads", leadHandler.Criar).Methods("POST")
	r.HandleFunc("/leads", leadHandler.Listar).Methods("GET")
	r.HandleFunc("/leads/{id}", leadHandler.BuscarPorID).Methods("GET")
	r.HandleFunc("/leads/{id}", leadHandler.Atualizar).Methods("PATCH")
	r.Handle("/leads/{id}/consultor", aprovadores(http.HandlerFunc(leadHandler.AtribuirConsultor))).Methods("PATCH")
	r.Handle("/leads/{id}/avancar", equipe(http.HandlerFunc(leadHandler.AvancarEtapa))).Methods("POST")
	r.Handle("/leads/{id}/receita/aprovar", aprovadores(http.HandlerFunc(leadHandler.AprovarReceita))).Methods("POST")
	r.Handle("/leads/{id}/receita/rejeitar", aprovadores(http.HandlerFunc(leadHandler.RejeitarReceita))).Methods("POST")
	r.Handle("/leads/{id}/anvisa/aprovar", aprovadores(http.HandlerFunc(leadHandler.AprovarAnvisa))).Methods("POST")
	r.Handle("/leads/{id}/anvisa/rejeitar", aprovadores(http.HandlerFunc(leadHandler.RejeitarAnvisa))).Methods("POST")

	// Comentários de lead
	r.HandleFunc("/leads/{id}/comentarios", comentarioHandler.ListarPorLead).Methods("GET")
	r.Handle("/leads/{id}/comentarios", equipe(http.HandlerFunc(comentarioHandler.Criar))).Methods("POST")
	r.Handle("/leads/{id}/comentarios/{cid}", equipe(http.HandlerFunc(comentarioHandler.Atualizar))).Methods("PUT")
	r.Handle("/leads/{id}/comentarios/{cid}", equipe(http.HandlerFunc(comentarioHandler.Remover))).Methods("DELETE")

	// Carrinho (aceita identidade anônima)
	r.HandleFunc("/carrinho", carrinhoHandler.Obter).Methods("GET")
	r.HandleFunc("/carrinho/itens", carrinhoHandler.AdicionarItem).Methods("POST")
	r.HandleFunc("/carrinho/itens/{produtoId}", carrinhoHandler.DefinirQuantidade).Methods("PATCH")
	r.HandleFunc("/carrinho/itens/{produtoId}", carrinhoHandler.RemoverItem).Methods("DELETE")
	r.HandleFunc("/carrinho", carrinhoHandler.Limpar).Methods("DELETE")

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{os.Getenv("FRONTEND_ORIGIN")},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", auth.CabecalhoUsuario},
		AllowCredentials: true,
	})

	porta := os.Getenv("PORT")
	if porta == "" {
		porta = "8080"
	}
	log.Printf("Servidor rodando em http://localhost:%s", porta)
	log.Fatal(http.ListenAndServe(":"+porta, c.Handler(r)))
}
